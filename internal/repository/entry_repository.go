package repository

import (
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	apperrors "office-ledger/internal/errors"
)

type entryRepository struct {
	db      SQLExecutor
	dialect dialect
	logger  *slog.Logger
}

func (r *entryRepository) CreateEntry(entry *domain.LedgerEntry) error {
	query := r.dialect.rebind(`
		INSERT INTO ledger_entries
		(id, account_id, kind, amount, description, category, mode, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)

	_, err := r.db.Exec(
		query,
		entry.ID.String(),
		entry.AccountID.String(),
		string(entry.Kind),
		entry.Amount.String(),
		entry.Description,
		string(entry.Category),
		string(entry.Mode),
		entry.OccurredAt,
	)

	if err != nil {
		r.logger.Error("Failed to create ledger entry",
			"entry_id", entry.ID,
			"account_id", entry.AccountID,
			"error", err)
		return classifyError(err)
	}

	r.logger.Info("Ledger entry created",
		"entry_id", entry.ID,
		"account_id", entry.AccountID,
		"kind", entry.Kind,
		"amount", entry.Amount,
		"mode", entry.Mode)
	return nil
}

func (r *entryRepository) ListByAccount(accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	query := r.dialect.rebind(`
		SELECT id, account_id, kind, amount, description, category, mode, occurred_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY occurred_at DESC
	`)

	rows, err := r.db.Query(query, accountID.String())
	if err != nil {
		r.logger.Error("Failed to list entries", "account_id", accountID, "error", err)
		return nil, classifyError(err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

func (r *entryRepository) ListAll() ([]domain.LedgerEntry, error) {
	query := `
		SELECT id, account_id, kind, amount, description, category, mode, occurred_at
		FROM ledger_entries
		ORDER BY occurred_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list all entries", "error", err)
		return nil, classifyError(err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

func (r *entryRepository) scanEntries(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		var idStr, accountIDStr, kindStr, amountStr, categoryStr, modeStr string

		err := rows.Scan(
			&idStr,
			&accountIDStr,
			&kindStr,
			&amountStr,
			&entry.Description,
			&categoryStr,
			&modeStr,
			&entry.OccurredAt,
		)
		if err != nil {
			return nil, classifyError(err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse entry id").WithDetails(err.Error())
		}
		accountID, err := uuid.Parse(accountIDStr)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse account id").WithDetails(err.Error())
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.InternalError, "failed to parse amount").WithDetails(err.Error())
		}

		entry.ID = id
		entry.AccountID = accountID
		entry.Kind = domain.Kind(kindStr)
		entry.Amount = amount
		entry.Category = domain.Category(categoryStr)
		entry.Mode = domain.Mode(modeStr)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(err)
	}
	return entries, nil
}
