package model

// TimeseriesRow is the valuation of a portfolio on a single priced date.
// V and the weights are float64 by design: precision loss is acceptable
// only at this presentation boundary, never mid-calculation.
type TimeseriesRow struct {
	Date    string             `json:"date"`
	V       float64            `json:"V"`
	Weights map[string]float64 `json:"weights"`
}

// Timeseries is the full reconstruction result for one portfolio over a
// date window. Assets lists the tracked universe in output order; Rows
// holds one entry per priced date, ascending.
type Timeseries struct {
	PortfolioID string          `json:"portfolio_id"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Assets      []string        `json:"assets"`
	Rows        []TimeseriesRow `json:"rows"`
}
