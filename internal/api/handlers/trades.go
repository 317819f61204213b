package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/request"
	"github.com/mleiva/portfolio-tracker-backend/internal/api/response"
	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
	"github.com/mleiva/portfolio-tracker-backend/internal/validation"
)

// TradeHandler handles HTTP requests for trade submission.
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// CreateTradesResponse is the body of a successful trade submission.
type CreateTradesResponse struct {
	Created int `json:"created"`
}

// CreateTrades handles POST requests to record a batch of trade legs.
// The batch is atomic: on any validation or domain failure no leg is
// persisted.
//
// Endpoint: POST /api/portfolios/{uuid}/trades
// Request Body: CreateTradesRequest (date, legs)
// Response: 201 Created with the number of legs created
// Error: 400 Bad Request on body/field validation failure, unknown asset,
// missing price, or insufficient liquidity
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if persistence fails
func (h *TradeHandler) CreateTrades(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CreateTradesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTrades(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	legs := make([]service.LegInput, len(req.Legs))
	for i, leg := range req.Legs {
		legs[i] = service.LegInput{
			AssetCode: leg.Asset,
			Side:      leg.Side,
			AmountUSD: leg.AmountUSD,
		}
	}

	created, err := h.tradeService.Submit(r.Context(), portfolioID, date, legs)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrAssetNotFound),
			errors.Is(err, apperrors.ErrPriceNotFound),
			errors.Is(err, apperrors.ErrInsufficientLiquidity):
			response.RespondError(w, http.StatusBadRequest, "trade rejected", err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreateTrades.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, CreateTradesResponse{Created: len(created)})
}
