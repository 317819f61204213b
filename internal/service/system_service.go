package service

import (
	"database/sql"
	"runtime"

	"github.com/mleiva/portfolio-tracker-backend/internal/database"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// SystemService exposes operational information about the running service.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService with the provided database connection.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db}
}

// Health reports whether the database is reachable.
func (s *SystemService) Health() error {
	return database.HealthCheck(s.db)
}

// Version returns build information.
func (s *SystemService) Version() model.VersionInfo {
	return model.VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
	}
}
