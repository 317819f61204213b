package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/handlers"
	custommiddleware "github.com/mleiva/portfolio-tracker-backend/internal/api/middleware"
	"github.com/mleiva/portfolio-tracker-backend/internal/config"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	timeseriesService *service.TimeseriesService,
	tradeService *service.TradeService,
	etlService *service.ETLService,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolios/{uuid}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateUUIDMiddleware)

			portfolioHandler := handlers.NewPortfolioHandler(timeseriesService)
			tradeHandler := handlers.NewTradeHandler(tradeService)
			r.Get("/timeseries", portfolioHandler.Timeseries)
			r.Post("/trades", tradeHandler.CreateTrades)
		})

		r.Route("/imports", func(r chi.Router) {
			importHandler := handlers.NewImportHandler(etlService)
			r.Get("/latest", importHandler.Latest)
		})
	})

	return r
}
