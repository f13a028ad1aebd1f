package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	apperrors "office-ledger/internal/errors"
)

type accountRepository struct {
	db      SQLExecutor
	dialect dialect
	logger  *slog.Logger
}

func (r *accountRepository) CreateAccount(account *domain.Account) error {
	query := r.dialect.rebind(`
		INSERT INTO accounts (id, username, role, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)

	now := time.Now().UTC()
	_, err := r.db.Exec(
		query,
		account.ID.String(),
		account.Username,
		string(account.Role),
		account.Balance.String(),
		now,
		now,
	)

	if err != nil {
		appErr := classifyError(err)
		if appErr.Code == apperrors.DuplicateAccount {
			r.logger.Warn("Duplicate username on account creation", "username", account.Username)
		} else {
			r.logger.Error("Failed to create account", "account_id", account.ID, "error", err)
		}
		return appErr
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	r.logger.Info("Account created", "account_id", account.ID, "username", account.Username)
	return nil
}

func (r *accountRepository) GetAccount(id uuid.UUID) (*domain.Account, error) {
	query := r.dialect.rebind(`
		SELECT id, username, role, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`)

	return r.scanAccount(r.db.QueryRow(query, id.String()))
}

func (r *accountRepository) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	query := r.dialect.rebind(`
		SELECT id, username, role, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`) + r.dialect.lockClause()

	return r.scanAccount(r.db.QueryRow(query, id.String()))
}

func (r *accountRepository) scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	var idStr, roleStr, balanceStr string

	err := row.Scan(
		&idStr,
		&account.Username,
		&roleStr,
		&balanceStr,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "error", err)
		return nil, classifyError(err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse account id").WithDetails(err.Error())
	}
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	account.ID = id
	account.Role = domain.Role(roleStr)
	account.Balance = balance
	return &account, nil
}

func (r *accountRepository) ListAccounts() ([]domain.Account, error) {
	query := `
		SELECT id, username, role, balance, created_at, updated_at
		FROM accounts ORDER BY created_at
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, classifyError(err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		var idStr, roleStr, balanceStr string

		if err := rows.Scan(&idStr, &account.Username, &roleStr, &balanceStr, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, classifyError(err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse account id").WithDetails(err.Error())
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse balance").WithDetails(err.Error())
		}

		account.ID = id
		account.Role = domain.Role(roleStr)
		account.Balance = balance
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(err)
	}
	return accounts, nil
}

func (r *accountRepository) UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error {
	query := r.dialect.rebind(`
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3
	`)

	result, err := r.db.Exec(query, newBalance.String(), time.Now().UTC(), id.String())
	if err != nil {
		r.logger.Error("Failed to update account balance", "account_id", id, "error", err)
		return classifyError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classifyError(err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
