package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/handlers"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("returns 200 when the database is reachable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		rec := httptest.NewRecorder()

		handler.Health(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", rec.Code)
		}
	})

	t.Run("returns 503 when the database is down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		rec := httptest.NewRecorder()

		handler.Health(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", rec.Code)
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewSystemHandler(testutil.NewTestSystemService(t, db))

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	rec := httptest.NewRecorder()

	handler.Version(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var info model.VersionInfo
	testutil.DecodeJSON(t, rec, &info)
	if info.GoVersion == "" {
		t.Error("Expected a Go version in the response")
	}
}
