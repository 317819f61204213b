package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// AssetRepository provides data access methods for the asset table.
type AssetRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// WithTx returns a new AssetRepository scoped to the provided transaction.
func (r *AssetRepository) WithTx(tx *sql.Tx) *AssetRepository {
	return &AssetRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *AssetRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetByCode retrieves a single asset by its unique code.
// Returns apperrors.ErrAssetNotFound if no asset with that code exists.
func (r *AssetRepository) GetByCode(code string) (model.Asset, error) {
	var a model.Asset

	err := r.getQuerier().QueryRow(
		`SELECT id, code, name FROM asset WHERE code = ?`, code,
	).Scan(&a.ID, &a.Code, &a.Name)
	if err == sql.ErrNoRows {
		return model.Asset{}, fmt.Errorf("%w: %s", apperrors.ErrAssetNotFound, code)
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to query asset table: %w", err)
	}

	return a, nil
}

// GetByIDs retrieves assets for the given IDs, keyed by ID.
// IDs with no matching asset are simply absent from the result.
func (r *AssetRepository) GetByIDs(ids []string) (map[string]model.Asset, error) {
	assets := make(map[string]model.Asset)
	if len(ids) == 0 {
		return assets, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT id, code, name FROM asset WHERE id IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Code, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan asset table results: %w", err)
		}
		assets[a.ID] = a
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// EnsureAssets inserts any of the given codes that do not exist yet and
// returns all of them keyed by code. Existing assets are left untouched.
func (r *AssetRepository) EnsureAssets(ctx context.Context, codes []string) (map[string]model.Asset, error) {
	assets := make(map[string]model.Asset)
	if len(codes) == 0 {
		return assets, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertQuery := `INSERT OR IGNORE INTO asset (id, code, name) VALUES (?, ?, ?)`
	for _, code := range codes {
		if _, err := tx.ExecContext(ctx, insertQuery, uuid.New().String(), code, code); err != nil {
			return nil, fmt.Errorf("failed to insert asset %s: %w", code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	placeholders := make([]string, len(codes))
	args := make([]any, len(codes))
	for i, code := range codes {
		placeholders[i] = "?"
		args[i] = code
	}

	query := `SELECT id, code, name FROM asset WHERE code IN (` + strings.Join(placeholders, ",") + `)`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Code, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan asset table results: %w", err)
		}
		assets[a.Code] = a
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// Count returns the total number of assets.
func (r *AssetRepository) Count() (int, error) {
	var count int
	if err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM asset`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count asset table: %w", err)
	}
	return count, nil
}
