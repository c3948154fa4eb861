package history

import (
	"fmt"
	"log/slog"
	"strings"
)

// StoreConfig selects and parameterizes a history backend.
type StoreConfig struct {
	Backend string // "file" (default), "sqlite" or "postgres"
	// Dir is the record directory for the file backend.
	Dir string
	// ConnectionString is the file path for SQLite or the DSN for Postgres.
	ConnectionString string
	MaxRecords       int
	Logger           *slog.Logger
}

// NewStore creates the configured backend.
func NewStore(cfg StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFileStore(cfg.Dir, cfg.MaxRecords, cfg.Logger)
	case "sqlite", "sqlite3":
		path := cfg.ConnectionString
		if path == "" {
			path = ".perfbench.db"
		}
		return NewSQLiteStore(path, cfg.MaxRecords, cfg.Logger)
	case "postgres", "postgresql":
		if cfg.ConnectionString == "" {
			return nil, fmt.Errorf("postgres connection string is required")
		}
		return NewPostgresStore(cfg.ConnectionString, cfg.MaxRecords, cfg.Logger)
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Backend)
	}
}
