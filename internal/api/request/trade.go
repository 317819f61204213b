// Package request declares the input structures of the HTTP API. Every
// endpoint decodes into a static struct; there is no dynamic schema
// construction.
package request

import "github.com/shopspring/decimal"

// TradeLegRequest is one buy/sell instruction in a trade submission.
// amount_usd accepts both JSON numbers and strings.
type TradeLegRequest struct {
	Asset     string          `json:"asset"`
	Side      string          `json:"side"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
}

// CreateTradesRequest is the body of POST /api/portfolios/{uuid}/trades.
type CreateTradesRequest struct {
	Date string            `json:"date"`
	Legs []TradeLegRequest `json:"legs"`
}
