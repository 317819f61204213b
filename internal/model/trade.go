package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade sides. A leg changes USD exposure, not quantity directly: the
// implied quantity delta is amount_usd / price(asset, date).
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeLeg is one append-only entry in the trade ledger. Legs are
// immutable once created; within a day, insertion order (rowid) is the
// tie-break for liquidity validation.
type TradeLeg struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	AssetID     string          `json:"assetId"`
	Date        time.Time       `json:"date"`
	Side        string          `json:"side"`
	AmountUSD   decimal.Decimal `json:"amountUsd"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}
