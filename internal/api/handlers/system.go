package handlers

import (
	"net/http"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/response"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

// SystemHandler handles HTTP requests for operational endpoints.
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler with the provided service dependency.
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health handles GET requests for service health.
//
// Endpoint: GET /api/system/health
// Response: 200 OK when the database is reachable, 503 otherwise
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.Health(); err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, "database unreachable", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Version handles GET requests for build information.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.systemService.Version())
}
