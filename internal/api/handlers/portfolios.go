package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/response"
	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
	"github.com/mleiva/portfolio-tracker-backend/internal/validation"
)

// PortfolioHandler handles HTTP requests for portfolio valuation endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the time-series service.
type PortfolioHandler struct {
	timeseriesService *service.TimeseriesService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependency.
func NewPortfolioHandler(timeseriesService *service.TimeseriesService) *PortfolioHandler {
	return &PortfolioHandler{
		timeseriesService: timeseriesService,
	}
}

// Timeseries handles GET requests for a portfolio's valuation history.
//
// Endpoint: GET /api/portfolios/{uuid}/timeseries?start=YYYY-MM-DD&end=YYYY-MM-DD
// Response: 200 OK with Timeseries
// Error: 400 Bad Request on bad dates, start > end, start before inception,
// or a portfolio without holdings
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if computation fails
func (h *PortfolioHandler) Timeseries(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	query := r.URL.Query()
	start, end, err := validation.ValidateTimeseriesRange(query.Get("start"), query.Get("end"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	timeseries, err := h.timeseriesService.Compute(portfolioID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInvalidDateRange),
			errors.Is(err, apperrors.ErrStartBeforeInception),
			errors.Is(err, apperrors.ErrEmptyPortfolio):
			response.RespondError(w, http.StatusBadRequest, "invalid time-series request", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToComputeTimeseries.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, timeseries)
}
