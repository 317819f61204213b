package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrAssetNotFound indicates that an asset with the given code does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrPriceNotFound indicates no price record exists for a specific asset and
	// date combination (or the recorded price is zero, which is unusable).
	ErrPriceNotFound = errors.New("price not found")

	// ErrImportNotFound indicates that no ETL import has ever been recorded.
	ErrImportNotFound = errors.New("no imports recorded")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientLiquidity indicates that a SELL leg would take an asset's
	// reconstructed quantity below zero. The wrapped message carries the
	// available and requested quantities.
	ErrInsufficientLiquidity = errors.New("insufficient quantity for sale")

	// ErrEmptyPortfolio indicates that a portfolio has no initial holdings, so
	// no time series can be computed for it.
	ErrEmptyPortfolio = errors.New("portfolio has no initial holdings")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (start date after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrStartBeforeInception indicates a time-series query starting before the
	// portfolio's inception date.
	ErrStartBeforeInception = errors.New("start date precedes portfolio inception")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data, as opposed to missing entities or validation issues.
var (
	ErrFailedToComputeTimeseries = errors.New("failed to compute portfolio time series")
	ErrFailedToCreateTrades      = errors.New("failed to create trades")
	ErrFailedToRetrieveImport    = errors.New("failed to retrieve import status")
)
