package model

import "time"

// Import audit statuses.
const (
	ImportStatusSuccess = "SUCCESS"
	ImportStatusFailed  = "FAILED"
)

// DataImport is the audit record of one ETL batch. The file hash is
// unique, which makes re-running the same input a no-op unless forced.
type DataImport struct {
	ID           string    `json:"id"`
	SourceName   string    `json:"source_name"`
	FileHash     string    `json:"file_hash"`
	ImportedAt   time.Time `json:"imported_at"`
	Status       string    `json:"status"`
	RowsInserted int       `json:"rows_inserted"`
	RowsUpdated  int       `json:"rows_updated"`
	Notes        string    `json:"notes"`
}

// ImportStatus is the latest import audit record enriched with live row
// counts, as served by GET /api/imports/latest.
type ImportStatus struct {
	SourceName   string    `json:"source_name"`
	FileHash     string    `json:"file_hash"`
	Status       string    `json:"status"`
	ImportedAt   time.Time `json:"imported_at"`
	RowsInserted int       `json:"rows_inserted"`
	RowsUpdated  int       `json:"rows_updated"`
	Notes        string    `json:"notes"`
	Assets       int       `json:"assets"`
	Prices       int       `json:"prices"`
	Holdings     int       `json:"holdings"`
	Portfolios   int       `json:"portfolios"`
}
