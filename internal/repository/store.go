package repository

import (
	"database/sql"
	"log/slog"

	"office-ledger/internal/domain"
	apperrors "office-ledger/internal/errors"
)

// SQLStore implements domain.Store on top of database/sql. The same type
// serves postgres and sqlite; the dialect decides placeholder style and row
// locking.
type SQLStore struct {
	executor SQLExecutor
	dialect  dialect
	logger   *slog.Logger
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{executor: db, dialect: dialectPostgres, logger: logger}
}

func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLStore {
	return &SQLStore{executor: db, dialect: dialectSQLite, logger: logger}
}

var _ domain.Store = (*SQLStore)(nil)

func (s *SQLStore) Accounts() domain.AccountRepository {
	return &accountRepository{db: s.executor, dialect: s.dialect, logger: s.logger}
}

func (s *SQLStore) Entries() domain.EntryRepository {
	return &entryRepository{db: s.executor, dialect: s.dialect, logger: s.logger}
}

// WithTransaction executes fn against a transactional view of the store.
// Either every write fn issues commits, or none does. A failed commit is
// classified (conflict vs unavailable) before being returned.
func (s *SQLStore) WithTransaction(fn func(domain.Store) error) error {
	db, ok := s.executor.(*sql.DB)
	if !ok {
		// Already inside a transaction; run against the same view.
		return fn(s)
	}

	tx, err := db.Begin()
	if err != nil {
		return classifyError(err)
	}

	txStore := &SQLStore{
		executor: &TxWrapper{Tx: tx},
		dialect:  s.dialect,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		if appErr, ok := err.(*apperrors.AppError); ok {
			return appErr
		}
		return classifyError(err)
	}

	if err := tx.Commit(); err != nil {
		return classifyError(err)
	}
	return nil
}
