package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"office-ledger/internal/config"
	"office-ledger/internal/domain"
)

// NewStoreFromConfig opens the configured backend, runs migrations where a
// schema exists, and returns the store with a close func for the underlying
// connection.
func NewStoreFromConfig(cfg *config.Config, logger *slog.Logger) (domain.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.GetDBConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := RunMigrations(db, "postgres"); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewPostgresStore(db, logger), db.Close, nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}

		// _txlock=immediate takes the write lock at BEGIN, so our
		// transactional units serialize instead of failing mid-flight.
		dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)", url.PathEscape(cfg.SQLitePath))
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite allows one writer; more connections just contend
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping sqlite: %w", err)
		}
		if err := RunMigrations(db, "sqlite"); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewSQLiteStore(db, logger), db.Close, nil

	case config.BackendMemory:
		return NewMemoryStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
