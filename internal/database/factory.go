package database

import (
	"fmt"
	"os"
	"path/filepath"

	"ats-go/internal/config"
)

// DatabaseFileName is the SQLite file created inside data_dir.
const DatabaseFileName = "ats.db"

// NewDatabaseFromConfig creates a database based on the database config type.
// The schema is not touched; callers check or apply migrations.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*SQLDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, DatabaseFileName))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("dsn required for postgres database")
		}
		return NewPostgresDatabase(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
