package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mleiva/portfolio-tracker-backend/internal/api/handlers"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
	"github.com/mleiva/portfolio-tracker-backend/internal/testutil"
)

// TestImportHandler_Latest tests the import status endpoint.
//
// WHY: Operators poll this after a bulk load. A fresh system must answer
// 404, not an empty object, so "never imported" is unambiguous.
func TestImportHandler_Latest(t *testing.T) {
	t.Run("returns 404 before any import", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		handler := handlers.NewImportHandler(testutil.NewTestETLService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/imports/latest", nil)
		rec := httptest.NewRecorder()

		// Execute
		handler.Latest(rec, req)

		// Assert
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("returns 200 with the latest audit record", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		handler := handlers.NewImportHandler(testutil.NewTestETLService(t, db))

		importRepo := repository.NewImportRepository(db)
		if err := importRepo.Insert(context.Background(), model.DataImport{
			ID:           testutil.MakeID(),
			SourceName:   "prices.csv+weights.csv",
			FileHash:     "abc123",
			ImportedAt:   time.Now().UTC(),
			Status:       model.ImportStatusSuccess,
			RowsInserted: 5,
		}); err != nil {
			t.Fatalf("Failed to insert audit record: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/imports/latest", nil)
		rec := httptest.NewRecorder()

		// Execute
		handler.Latest(rec, req)

		// Assert
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var status model.ImportStatus
		testutil.DecodeJSON(t, rec, &status)
		if status.SourceName != "prices.csv+weights.csv" {
			t.Errorf("Expected source prices.csv+weights.csv, got %s", status.SourceName)
		}
		if status.Status != model.ImportStatusSuccess {
			t.Errorf("Expected status SUCCESS, got %s", status.Status)
		}
		if status.RowsInserted != 5 {
			t.Errorf("Expected 5 rows inserted, got %d", status.RowsInserted)
		}
	})
}
