package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is a named container of holdings with an inception date and
// an initial value. The inception date defines the valuation epoch: no
// time-series query may start before it.
type Portfolio struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	StartDate    time.Time       `json:"startDate"`
	InitialValue decimal.Decimal `json:"initialValue"`
}

// InitialHolding is the quantity of one asset held at portfolio
// inception. At most one row exists per (portfolio, asset) pair. It is
// the base state every quantity reconstruction starts from; holdings are
// never edited after the ETL creates them.
type InitialHolding struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	AssetID     string          `json:"assetId"`
	AssetCode   string          `json:"assetCode"`
	Quantity    decimal.Decimal `json:"quantity"`
}
