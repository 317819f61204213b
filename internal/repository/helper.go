package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// querier is the subset of database/sql methods shared by *sql.DB and
// *sql.Tx. Repositories run their statements through it so a service can
// scope a repository to a transaction with WithTx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DateLayout is the canonical storage format for dates in SQLite.
const DateLayout = "2006-01-02"

// ParseTime parses a stored date in "2006-01-02", RFC3339 or SQLite
// datetime format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse(DateLayout, str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			returnTime, err = time.Parse("2006-01-02 15:04:05", str)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
			}
		}
	}
	return returnTime.UTC(), nil
}

// ParseDecimal parses a stored decimal column. Decimals are stored as
// text so no precision is lost crossing the database boundary.
func ParseDecimal(str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal: %w", err)
	}
	return d, nil
}
