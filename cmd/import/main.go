// Command import bulk-loads a price history and inception weights from
// CSV files, creating the assets, portfolios, prices and initial holdings
// the server reads. Re-running with unchanged input is a no-op unless
// -force is given.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/config"
	"github.com/mleiva/portfolio-tracker-backend/internal/database"
	"github.com/mleiva/portfolio-tracker-backend/internal/logging"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

func main() {
	pricesPath := flag.String("prices", "", "path to the prices CSV (date,CODE1,CODE2,...)")
	weightsPath := flag.String("weights", "", "path to the weights CSV (date,asset,<portfolio>...)")
	startDateStr := flag.String("start-date", service.DefaultStartDate.Format("2006-01-02"), "portfolio inception date")
	initialValue := flag.String("v0", service.DefaultInitialValue.String(), "initial portfolio value in USD")
	force := flag.Bool("force", false, "re-import even if this input was already loaded")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Config{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: true,
	})

	if *pricesPath == "" || *weightsPath == "" {
		log.Fatal().Msg("Both -prices and -weights are required")
	}

	startDate, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -start-date")
	}

	v0, err := decimal.NewFromString(*initialValue)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -v0")
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	etl := service.NewETLService(
		repository.NewAssetRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewHoldingRepository(db),
		repository.NewPriceRepository(db),
		repository.NewImportRepository(db),
		log,
	)

	imp, err := etl.Import(context.Background(), service.ImportOptions{
		PricesPath:   *pricesPath,
		WeightsPath:  *weightsPath,
		StartDate:    startDate.UTC(),
		InitialValue: v0,
		Force:        *force,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	log.Info().
		Str("source", imp.SourceName).
		Str("status", imp.Status).
		Int("rows_inserted", imp.RowsInserted).
		Msg("Import finished")
}
