package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/costmatrix/analytics-engine/pkg/config"
)

// NewSQLite opens a WAL-mode SQLite database at the configured path.
// Foreign keys are enabled explicitly — sqlite3 defaults them off.
func NewSQLite(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "./data/analytics.db"
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// sqlite3 serialises writers internally; a single connection avoids
	// "database is locked" errors under our own per-month mutex on top.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}

// Open dispatches to the driver selected by cfg.Backend. "mysql" is accepted
// as a configuration value but has no wired driver in this build.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Backend {
	case config.DBBackendMySQL:
		return nil, fmt.Errorf("db backend %q is recognised but not wired in this build", cfg.Backend)
	case config.DBBackendPostgres:
		return NewPostgres(cfg)
	case config.DBBackendSQLite, "":
		return NewSQLite(cfg)
	default:
		return nil, fmt.Errorf("unknown db backend %q", cfg.Backend)
	}
}
