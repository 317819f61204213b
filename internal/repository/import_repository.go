package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// ImportRepository provides data access methods for the data_import audit table.
type ImportRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepository with the provided database connection.
func NewImportRepository(db *sql.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

func scanImport(scan func(dest ...any) error) (model.DataImport, error) {
	var imp model.DataImport
	var importedAtStr string

	if err := scan(
		&imp.ID,
		&imp.SourceName,
		&imp.FileHash,
		&importedAtStr,
		&imp.Status,
		&imp.RowsInserted,
		&imp.RowsUpdated,
		&imp.Notes,
	); err != nil {
		return model.DataImport{}, err
	}

	var err error
	imp.ImportedAt, err = ParseTime(importedAtStr)
	if err != nil {
		return model.DataImport{}, fmt.Errorf("failed to parse import timestamp: %w", err)
	}

	return imp, nil
}

// GetLatest retrieves the most recent import audit record.
// Returns apperrors.ErrImportNotFound if no import has ever run.
func (r *ImportRepository) GetLatest() (model.DataImport, error) {
	imp, err := scanImport(r.db.QueryRow(`
		SELECT id, source_name, file_hash, imported_at, status, rows_inserted, rows_updated, notes
		FROM data_import
		ORDER BY imported_at DESC, rowid DESC
		LIMIT 1
	`).Scan)
	if err == sql.ErrNoRows {
		return model.DataImport{}, apperrors.ErrImportNotFound
	}
	if err != nil {
		return model.DataImport{}, fmt.Errorf("failed to query data_import table: %w", err)
	}

	return imp, nil
}

// GetByHash retrieves the import audit record matching a content hash.
// The boolean reports whether a record was found.
func (r *ImportRepository) GetByHash(fileHash string) (model.DataImport, bool, error) {
	imp, err := scanImport(r.db.QueryRow(`
		SELECT id, source_name, file_hash, imported_at, status, rows_inserted, rows_updated, notes
		FROM data_import
		WHERE file_hash = ?
	`, fileHash).Scan)
	if err == sql.ErrNoRows {
		return model.DataImport{}, false, nil
	}
	if err != nil {
		return model.DataImport{}, false, fmt.Errorf("failed to query data_import table: %w", err)
	}

	return imp, true, nil
}

// Insert records an import audit row. A row with the same content hash is
// replaced, so forced re-imports and repeated failures keep one audit row
// per input. The timestamp is bound explicitly so the stored row matches
// the record the caller holds.
func (r *ImportRepository) Insert(ctx context.Context, imp model.DataImport) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO data_import (id, source_name, file_hash, imported_at, status, rows_inserted, rows_updated, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		imp.ID,
		imp.SourceName,
		imp.FileHash,
		imp.ImportedAt.UTC().Format("2006-01-02 15:04:05"),
		imp.Status,
		imp.RowsInserted,
		imp.RowsUpdated,
		imp.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert data_import row: %w", err)
	}

	return nil
}
