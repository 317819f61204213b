package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// HoldingRepository provides data access methods for the initial_holding table.
// Initial holdings are the base state of a portfolio at inception; they are
// created by the ETL and only read afterwards.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a new HoldingRepository scoped to the provided transaction.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetForPortfolio retrieves all initial holdings for a portfolio, enriched
// with the asset code and ordered by it. Returns an empty slice when the
// portfolio has no holdings.
func (r *HoldingRepository) GetForPortfolio(portfolioID string) ([]model.InitialHolding, error) {
	query := `
		SELECT h.id, h.portfolio_id, h.asset_id, a.code, h.quantity
		FROM initial_holding h
		JOIN asset a ON h.asset_id = a.id
		WHERE h.portfolio_id = ?
		ORDER BY a.code ASC
	`

	rows, err := r.getQuerier().Query(query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query initial_holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.InitialHolding{}
	for rows.Next() {
		var h model.InitialHolding
		var quantityStr string

		if err := rows.Scan(&h.ID, &h.PortfolioID, &h.AssetID, &h.AssetCode, &quantityStr); err != nil {
			return nil, fmt.Errorf("failed to scan initial_holding table results: %w", err)
		}

		h.Quantity, err = ParseDecimal(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse holding quantity: %w", err)
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating initial_holding table: %w", err)
	}

	return holdings, nil
}

// InsertHoldings inserts the given holdings in a single transaction.
// Rows violating the (portfolio, asset) uniqueness constraint are ignored,
// which keeps re-imports of the same data idempotent.
func (r *HoldingRepository) InsertHoldings(ctx context.Context, holdings []model.InitialHolding) error {
	if len(holdings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO initial_holding (id, portfolio_id, asset_id, quantity)
		VALUES (?, ?, ?, ?)
	`

	for _, h := range holdings {
		if _, err := tx.ExecContext(ctx, query, h.ID, h.PortfolioID, h.AssetID, h.Quantity.String()); err != nil {
			return fmt.Errorf("failed to insert initial holding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteForPortfolio removes all initial holdings of a portfolio.
// Used by forced re-imports only.
func (r *HoldingRepository) DeleteForPortfolio(ctx context.Context, portfolioID string) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM initial_holding WHERE portfolio_id = ?`, portfolioID); err != nil {
		return fmt.Errorf("failed to delete initial holdings: %w", err)
	}
	return nil
}

// Count returns the total number of initial holdings.
func (r *HoldingRepository) Count() (int, error) {
	var count int
	if err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM initial_holding`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count initial_holding table: %w", err)
	}
	return count, nil
}
