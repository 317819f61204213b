package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the canonical price of one asset on one date. Uniqueness of
// (asset, date) is enforced by the schema; the valuation engine assumes
// at most one price per asset per day.
type Price struct {
	ID      string          `json:"id"`
	AssetID string          `json:"assetId"`
	Date    time.Time       `json:"date"`
	Price   decimal.Decimal `json:"price"`
}
