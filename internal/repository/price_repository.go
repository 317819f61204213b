package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// PriceRepository provides data access methods for the price table.
// The schema guarantees at most one price per (asset, date).
type PriceRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// WithTx returns a new PriceRepository scoped to the provided transaction.
func (r *PriceRepository) WithTx(tx *sql.Tx) *PriceRepository {
	return &PriceRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PriceRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPriceOnDate retrieves the price of one asset on one date.
// Returns apperrors.ErrPriceNotFound if no row exists.
func (r *PriceRepository) GetPriceOnDate(assetID string, date time.Time) (decimal.Decimal, error) {
	var priceStr string

	err := r.getQuerier().QueryRow(
		`SELECT price FROM price WHERE asset_id = ? AND date = ?`,
		assetID, date.Format(DateLayout),
	).Scan(&priceStr)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, fmt.Errorf("%w: asset %s on %s", apperrors.ErrPriceNotFound, assetID, date.Format(DateLayout))
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to query price table: %w", err)
	}

	price, err := ParseDecimal(priceStr)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse price: %w", err)
	}

	return price, nil
}

// GetPricesInRange retrieves all prices for the given asset IDs within the
// inclusive date range, ordered by date ascending.
func (r *PriceRepository) GetPricesInRange(assetIDs []string, start, end time.Time) ([]model.Price, error) {
	if len(assetIDs) == 0 {
		return []model.Price{}, nil
	}

	placeholders := make([]string, len(assetIDs))
	args := make([]any, 0, len(assetIDs)+2)
	for i, id := range assetIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, start.Format(DateLayout), end.Format(DateLayout))

	query := `
		SELECT id, asset_id, date, price
		FROM price
		WHERE asset_id IN (` + strings.Join(placeholders, ",") + `)
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price table: %w", err)
	}
	defer rows.Close()

	prices := []model.Price{}
	for rows.Next() {
		var p model.Price
		var dateStr, priceStr string

		if err := rows.Scan(&p.ID, &p.AssetID, &dateStr, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan price table results: %w", err)
		}

		p.Date, err = ParseTime(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}

		p.Price, err = ParseDecimal(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}

		prices = append(prices, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price table: %w", err)
	}

	return prices, nil
}

// GetPricesOnDate retrieves all prices recorded on a single date, keyed by
// asset ID. Used by the ETL to convert inception weights into quantities.
func (r *PriceRepository) GetPricesOnDate(date time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.getQuerier().Query(`SELECT asset_id, price FROM price WHERE date = ?`, date.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query price table: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal)
	for rows.Next() {
		var assetID, priceStr string

		if err := rows.Scan(&assetID, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan price table results: %w", err)
		}

		price, err := ParseDecimal(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}

		prices[assetID] = price
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price table: %w", err)
	}

	return prices, nil
}

// BulkInsertPrices inserts the given prices in a single transaction and
// returns the number of rows actually inserted. Rows violating the
// (asset, date) uniqueness constraint are ignored.
func (r *PriceRepository) BulkInsertPrices(ctx context.Context, prices []model.Price) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT OR IGNORE INTO price (id, asset_id, date, price) VALUES (?, ?, ?, ?)`

	inserted := 0
	for _, p := range prices {
		res, err := tx.ExecContext(ctx, query, p.ID, p.AssetID, p.Date.Format(DateLayout), p.Price.String())
		if err != nil {
			return 0, fmt.Errorf("failed to insert price: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// Count returns the total number of price rows.
func (r *PriceRepository) Count() (int, error) {
	var count int
	if err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM price`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count price table: %w", err)
	}
	return count, nil
}
