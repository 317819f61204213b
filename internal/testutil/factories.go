package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

// MustDate parses a YYYY-MM-DD date or fails the test.
//
// Example usage:
//
//	d := testutil.MustDate(t, "2022-02-15")
func MustDate(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Invalid test date %q: %v", value, err)
	}
	return d
}

// MustDecimal parses a decimal string or fails the test.
func MustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("Invalid test decimal %q: %v", value, err)
	}
	return d
}

// CreateAsset inserts an asset with the given code and returns it.
func CreateAsset(t *testing.T, db *sql.DB, code string) model.Asset {
	t.Helper()

	asset := model.Asset{
		ID:   MakeID(),
		Code: code,
		Name: code,
	}

	_, err := db.Exec(
		"INSERT INTO asset (id, code, name) VALUES (?, ?, ?)",
		asset.ID, asset.Code, asset.Name,
	)
	if err != nil {
		t.Fatalf("Failed to create test asset %s: %v", code, err)
	}

	return asset
}

// CreatePortfolio inserts a portfolio with the given name, inception
// date and initial value, and returns it.
func CreatePortfolio(t *testing.T, db *sql.DB, name string, startDate time.Time, initialValue decimal.Decimal) model.Portfolio {
	t.Helper()

	portfolio := model.Portfolio{
		ID:           MakeID(),
		Name:         name,
		StartDate:    startDate,
		InitialValue: initialValue,
	}

	_, err := db.Exec(
		"INSERT INTO portfolio (id, name, start_date, initial_value) VALUES (?, ?, ?, ?)",
		portfolio.ID, portfolio.Name, portfolio.StartDate.Format("2006-01-02"), portfolio.InitialValue.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test portfolio %s: %v", name, err)
	}

	return portfolio
}

// CreateHolding inserts an initial holding of the given quantity.
func CreateHolding(t *testing.T, db *sql.DB, portfolioID, assetID string, quantity decimal.Decimal) model.InitialHolding {
	t.Helper()

	holding := model.InitialHolding{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		Quantity:    quantity,
	}

	_, err := db.Exec(
		"INSERT INTO initial_holding (id, portfolio_id, asset_id, quantity) VALUES (?, ?, ?, ?)",
		holding.ID, holding.PortfolioID, holding.AssetID, holding.Quantity.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return holding
}

// CreatePrice inserts a price for one asset on one date.
func CreatePrice(t *testing.T, db *sql.DB, assetID string, date time.Time, price decimal.Decimal) model.Price {
	t.Helper()

	p := model.Price{
		ID:      MakeID(),
		AssetID: assetID,
		Date:    date,
		Price:   price,
	}

	_, err := db.Exec(
		"INSERT INTO price (id, asset_id, date, price) VALUES (?, ?, ?, ?)",
		p.ID, p.AssetID, p.Date.Format("2006-01-02"), p.Price.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}

	return p
}

// CreateTradeLeg appends a leg to the trade ledger directly, bypassing
// admission checks. Useful for seeding history the engine must replay.
func CreateTradeLeg(t *testing.T, db *sql.DB, portfolioID, assetID string, date time.Time, side string, amountUSD decimal.Decimal) model.TradeLeg {
	t.Helper()

	leg := model.TradeLeg{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		AssetID:     assetID,
		Date:        date,
		Side:        side,
		AmountUSD:   amountUSD,
	}

	_, err := db.Exec(
		"INSERT INTO trade_leg (id, portfolio_id, asset_id, date, side, amount_usd) VALUES (?, ?, ?, ?, ?, ?)",
		leg.ID, leg.PortfolioID, leg.AssetID, leg.Date.Format("2006-01-02"), leg.Side, leg.AmountUSD.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test trade leg: %v", err)
	}

	return leg
}
