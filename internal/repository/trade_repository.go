package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// TradeRepository provides data access methods for the trade_leg table.
// The ledger is append-only: legs are never updated or deleted.
type TradeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTradeRepository creates a new TradeRepository with the provided database connection.
func NewTradeRepository(db *sql.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// WithTx returns a new TradeRepository scoped to the provided transaction.
func (r *TradeRepository) WithTx(tx *sql.Tx) *TradeRepository {
	return &TradeRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *TradeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetTradesForPortfolio retrieves all trade legs of a portfolio with
// date <= end, ordered by (date, insertion order). Quantity reconstruction
// depends on this ordering: within a day, earlier legs settle first.
func (r *TradeRepository) GetTradesForPortfolio(portfolioID string, end time.Time) ([]model.TradeLeg, error) {
	query := `
		SELECT id, portfolio_id, asset_id, date, side, amount_usd, created_at
		FROM trade_leg
		WHERE portfolio_id = ?
		AND date <= ?
		ORDER BY date ASC, rowid ASC
	`

	rows, err := r.getQuerier().Query(query, portfolioID, end.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query trade_leg table: %w", err)
	}
	defer rows.Close()

	legs := []model.TradeLeg{}
	for rows.Next() {
		var leg model.TradeLeg
		var dateStr, amountStr, createdAtStr string

		if err := rows.Scan(&leg.ID, &leg.PortfolioID, &leg.AssetID, &dateStr, &leg.Side, &amountStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan trade_leg table results: %w", err)
		}

		leg.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		leg.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		leg.AmountUSD, err = ParseDecimal(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade amount: %w", err)
		}

		legs = append(legs, leg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade_leg table: %w", err)
	}

	return legs, nil
}

// InsertLegs appends the given legs to the ledger, preserving their order.
// Either every leg is persisted or none is. When the repository is scoped
// to a transaction the legs join it; otherwise a transaction is opened for
// the batch. Serialization of concurrent submissions is the caller's
// responsibility: TradeService spans validation and insert with one write
// transaction.
func (r *TradeRepository) InsertLegs(ctx context.Context, legs []model.TradeLeg) error {
	if len(legs) == 0 {
		return nil
	}

	if r.tx != nil {
		return insertLegs(ctx, r.tx, legs)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertLegs(ctx, tx, legs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertLegs(ctx context.Context, tx *sql.Tx, legs []model.TradeLeg) error {
	query := `
		INSERT INTO trade_leg (id, portfolio_id, asset_id, date, side, amount_usd)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, leg := range legs {
		_, err := tx.ExecContext(ctx, query,
			leg.ID,
			leg.PortfolioID,
			leg.AssetID,
			leg.Date.Format(DateLayout),
			leg.Side,
			leg.AmountUSD.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert trade leg: %w", err)
		}
	}

	return nil
}

// CountForPortfolio returns the number of trade legs recorded for a portfolio.
func (r *TradeRepository) CountForPortfolio(portfolioID string) (int, error) {
	var count int
	if err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM trade_leg WHERE portfolio_id = ?`, portfolioID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trade_leg table: %w", err)
	}
	return count, nil
}
