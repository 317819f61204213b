package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanPortfolio(scan func(dest ...any) error) (model.Portfolio, error) {
	var p model.Portfolio
	var startDateStr, initialValueStr string

	if err := scan(&p.ID, &p.Name, &startDateStr, &initialValueStr); err != nil {
		return model.Portfolio{}, err
	}

	var err error
	p.StartDate, err = ParseTime(startDateStr)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse start date: %w", err)
	}

	p.InitialValue, err = ParseDecimal(initialValueStr)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to parse initial value: %w", err)
	}

	return p, nil
}

// GetPortfolio retrieves a single portfolio by ID.
// Returns apperrors.ErrPortfolioNotFound if no portfolio with that ID exists.
func (r *PortfolioRepository) GetPortfolio(id string) (model.Portfolio, error) {
	p, err := scanPortfolio(r.getQuerier().QueryRow(
		`SELECT id, name, start_date, initial_value FROM portfolio WHERE id = ?`, id,
	).Scan)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, fmt.Errorf("%w: %s", apperrors.ErrPortfolioNotFound, id)
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	return p, nil
}

// GetPortfolios retrieves all portfolios ordered by name.
func (r *PortfolioRepository) GetPortfolios() ([]model.Portfolio, error) {
	rows, err := r.getQuerier().Query(`SELECT id, name, start_date, initial_value FROM portfolio ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetOrCreateByName returns the portfolio with the given name, creating it
// with the provided inception date and initial value when absent.
func (r *PortfolioRepository) GetOrCreateByName(ctx context.Context, name string, startDate time.Time, initialValue decimal.Decimal) (model.Portfolio, error) {
	p, err := scanPortfolio(r.getQuerier().QueryRowContext(ctx,
		`SELECT id, name, start_date, initial_value FROM portfolio WHERE name = ?`, name,
	).Scan)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	p = model.Portfolio{
		ID:           uuid.New().String(),
		Name:         name,
		StartDate:    startDate,
		InitialValue: initialValue,
	}

	_, err = r.getQuerier().ExecContext(ctx,
		`INSERT INTO portfolio (id, name, start_date, initial_value) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.StartDate.Format(DateLayout), p.InitialValue.String(),
	)
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return p, nil
}

// Count returns the total number of portfolios.
func (r *PortfolioRepository) Count() (int, error) {
	var count int
	if err := r.getQuerier().QueryRow(`SELECT COUNT(*) FROM portfolio`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count portfolio table: %w", err)
	}
	return count, nil
}
