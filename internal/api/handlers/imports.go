package handlers

import (
	"errors"
	"net/http"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/response"
	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

// ImportHandler handles HTTP requests for ETL import status.
type ImportHandler struct {
	etlService *service.ETLService
}

// NewImportHandler creates a new ImportHandler with the provided service dependency.
func NewImportHandler(etlService *service.ETLService) *ImportHandler {
	return &ImportHandler{
		etlService: etlService,
	}
}

// Latest handles GET requests for the most recent import batch.
//
// Endpoint: GET /api/imports/latest
// Response: 200 OK with ImportStatus (audit fields plus live row counts)
// Error: 404 Not Found if no import has ever run
// Error: 500 Internal Server Error if retrieval fails
func (h *ImportHandler) Latest(w http.ResponseWriter, _ *http.Request) {
	status, err := h.etlService.LatestStatus()
	if err != nil {
		if errors.Is(err, apperrors.ErrImportNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrImportNotFound.Error(), "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveImport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, status)
}
