package repository

import (
	"database/sql"
	"regexp"
	"strings"

	"github.com/lib/pq"

	apperrors "office-ledger/internal/errors"
)

// SQLExecutor represents both sql.DB and sql.Tx
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DB represents a database that can begin transactions
type DB interface {
	SQLExecutor
	Begin() (*sql.Tx, error)
}

var _ DB = (*sql.DB)(nil)

// TxWrapper wraps sql.Tx to implement SQLExecutor
type TxWrapper struct {
	*sql.Tx
}

func (t *TxWrapper) Exec(query string, args ...interface{}) (sql.Result, error) {
	return t.Tx.Exec(query, args...)
}

func (t *TxWrapper) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return t.Tx.Query(query, args...)
}

func (t *TxWrapper) QueryRow(query string, args ...interface{}) *sql.Row {
	return t.Tx.QueryRow(query, args...)
}

type dialect string

const (
	dialectPostgres dialect = "postgres"
	dialectSQLite   dialect = "sqlite"
)

var placeholderRe = regexp.MustCompile(`\$\d+`)

// rebind rewrites $N placeholders for drivers that want ?. Queries are
// written in postgres form; arguments are always passed in positional order.
func (d dialect) rebind(query string) string {
	if d == dialectPostgres {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

// lockClause is appended to reads that must hold the row until commit.
// SQLite has no FOR UPDATE; its write transactions are serialized instead.
func (d dialect) lockClause() string {
	if d == dialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// classifyError maps driver failures onto the error taxonomy. Unique
// violations on the username index become DuplicateAccount, serialization
// and deadlock failures become Conflict, anything else StoreUnavailable.
func classifyError(err error) *apperrors.AppError {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if strings.Contains(pqErr.Constraint, "username") {
				return apperrors.ErrDuplicateAccount
			}
			return apperrors.NewAppError(apperrors.Conflict, "duplicate key").WithDetails(pqErr.Error())
		case "40001", "40P01":
			return apperrors.NewAppError(apperrors.Conflict, "concurrent update conflict").WithDetails(pqErr.Error())
		case "22003":
			return apperrors.NewAppError(apperrors.ValidationError, "amount out of range").WithDetails(pqErr.Error())
		}
		return apperrors.NewAppError(apperrors.StoreUnavailable, "ledger store unavailable").WithDetails(pqErr.Error())
	}
	// modernc.org/sqlite reports constraint failures in the error text
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		if strings.Contains(err.Error(), "username") {
			return apperrors.ErrDuplicateAccount
		}
		return apperrors.NewAppError(apperrors.Conflict, "duplicate key").WithDetails(err.Error())
	}
	if strings.Contains(err.Error(), "database is locked") {
		return apperrors.NewAppError(apperrors.Conflict, "concurrent update conflict").WithDetails(err.Error())
	}
	return apperrors.NewAppError(apperrors.StoreUnavailable, "ledger store unavailable").WithDetails(err.Error())
}
