package testutil

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

func NewTestQuantityService(t *testing.T, db *sql.DB) *service.QuantityService {
	t.Helper()

	return service.NewQuantityService(
		repository.NewHoldingRepository(db),
		repository.NewTradeRepository(db),
		repository.NewPriceRepository(db),
	)
}

func NewTestTradeService(t *testing.T, db *sql.DB) *service.TradeService {
	t.Helper()

	return service.NewTradeService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewAssetRepository(db),
		repository.NewPriceRepository(db),
		repository.NewTradeRepository(db),
		NewTestQuantityService(t, db),
	)
}

func NewTestTimeseriesService(t *testing.T, db *sql.DB) *service.TimeseriesService {
	t.Helper()

	return service.NewTimeseriesService(
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewTradeRepository(db),
		repository.NewPriceRepository(db),
		repository.NewAssetRepository(db),
		NewTestQuantityService(t, db),
	)
}

func NewTestETLService(t *testing.T, db *sql.DB) *service.ETLService {
	t.Helper()

	return service.NewETLService(
		repository.NewAssetRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewPriceRepository(db),
		repository.NewImportRepository(db),
		zerolog.Nop(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}
