package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mleiva/portfolio-tracker-backend/internal/api"
	"github.com/mleiva/portfolio-tracker-backend/internal/config"
	"github.com/mleiva/portfolio-tracker-backend/internal/database"
	"github.com/mleiva/portfolio-tracker-backend/internal/jobs"
	"github.com/mleiva/portfolio-tracker-backend/internal/logging"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Config{})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories
	assetRepo := repository.NewAssetRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	importRepo := repository.NewImportRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	quantityService := service.NewQuantityService(holdingRepo, tradeRepo, priceRepo)
	tradeService := service.NewTradeService(db, portfolioRepo, assetRepo, priceRepo, tradeRepo, quantityService)
	timeseriesService := service.NewTimeseriesService(portfolioRepo, holdingRepo, tradeRepo, priceRepo, assetRepo, quantityService)
	etlService := service.NewETLService(assetRepo, portfolioRepo, holdingRepo, priceRepo, importRepo, log)

	// Schedule background jobs
	scheduler := cron.New()
	if cfg.Jobs.IntegrityEnabled {
		integrityJob := jobs.NewLedgerIntegrityJob(portfolioRepo, quantityService, log)
		_, err := scheduler.AddFunc(cfg.Jobs.IntegritySchedule, func() {
			if err := integrityJob.Run(context.Background()); err != nil {
				log.Error().Err(err).Msg("Integrity job run failed")
			}
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Jobs.IntegritySchedule).Msg("Failed to schedule integrity job")
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(systemService, timeseriesService, tradeService, etlService, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
