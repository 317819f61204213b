package database_test

import (
	"path/filepath"
	"testing"

	"github.com/mleiva/portfolio-tracker-backend/internal/database"
)

// TestOpen tests the connection settings applied through the DSN.
//
// WHY: PRAGMAs issued with Exec only reach the single pooled connection
// that happens to run them. The DSN must carry the settings so every
// connection enforces foreign keys, waits out a busy writer instead of
// failing, and reads while a write transaction is open.
func TestOpen(t *testing.T) {
	// Setup
	db, err := database.Open(filepath.Join(t.TempDir(), "settings.db"))
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Assert
	t.Run("enables foreign keys", func(t *testing.T) {
		var fk int
		if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("Failed to read foreign_keys pragma: %v", err)
		}
		if fk != 1 {
			t.Errorf("Expected foreign_keys 1, got %d", fk)
		}
	})

	t.Run("sets a busy timeout", func(t *testing.T) {
		var timeout int
		if err := db.QueryRow("PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("Failed to read busy_timeout pragma: %v", err)
		}
		if timeout != 5000 {
			t.Errorf("Expected busy_timeout 5000, got %d", timeout)
		}
	})

	t.Run("uses write-ahead logging", func(t *testing.T) {
		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatalf("Failed to read journal_mode pragma: %v", err)
		}
		if mode != "wal" {
			t.Errorf("Expected journal_mode wal, got %s", mode)
		}
	})
}

// TestMigrate tests that the embedded migrations bring up the full schema.
func TestMigrate(t *testing.T) {
	// Setup
	db, err := database.Open(filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Open() returned unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Execute
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() returned unexpected error: %v", err)
	}

	// Assert
	tables := []string{"asset", "portfolio", "initial_holding", "price", "trade_leg", "data_import"}
	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}
