package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	"office-ledger/internal/errors"
	"office-ledger/internal/events"
)

// LedgerService owns every balance mutation. The invariant it protects:
// an account's cached balance always equals its seed plus committed credits
// minus committed cash debits, and no reader ever sees a balance change
// without its entry or vice versa. Cash-affecting operations are one
// transactional unit against the store; the service never retries a failed
// unit (retrying a financial mutation blindly risks duplicate commits).
type LedgerService struct {
	store     domain.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewLedgerService(store domain.Store, publisher events.Publisher, logger *slog.Logger) *LedgerService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

type ExpenseRequest struct {
	AccountID   uuid.UUID
	Description string
	Amount      decimal.Decimal
	Category    domain.Category
	Mode        domain.Mode
}

// RecordExpense appends a debit entry. For the cash mode the sufficiency
// check, balance write and entry append happen inside one store
// transaction, so two concurrent expenses can never both pass the check
// against the same stale balance. Non-cash modes (NEFT, IMPS) are
// informational: the entry is appended and the balance left alone.
func (s *LedgerService) RecordExpense(req *ExpenseRequest) (*domain.LedgerEntry, error) {
	s.logger.Info("Recording expense",
		"account_id", req.AccountID,
		"amount", req.Amount,
		"category", req.Category,
		"mode", req.Mode)

	if err := validateExpense(req); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   req.AccountID,
		Kind:        domain.KindDebit,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Mode:        req.Mode,
		OccurredAt:  time.Now().UTC(),
	}

	var err error
	if req.Mode.AffectsCash() {
		err = s.store.WithTransaction(func(tx domain.Store) error {
			account, err := tx.Accounts().GetAccountForUpdate(req.AccountID)
			if err != nil {
				return err
			}
			// Sufficiency is judged at commit time, against the
			// locked row, not against whatever the caller last saw.
			if account.Balance.LessThan(req.Amount) {
				return errors.ErrInsufficientFunds
			}
			if err := tx.Accounts().UpdateAccountBalance(account.ID, account.Balance.Sub(req.Amount)); err != nil {
				return err
			}
			return tx.Entries().CreateEntry(entry)
		})
	} else {
		if _, err = s.store.Accounts().GetAccount(req.AccountID); err == nil {
			err = s.store.Entries().CreateEntry(entry)
		}
	}

	if err != nil {
		s.logger.Warn("Expense rejected", "account_id", req.AccountID, "error", err)
		return nil, errors.FromStore(err)
	}

	s.publish(entry)
	s.logger.Info("Expense recorded", "entry_id", entry.ID, "account_id", entry.AccountID)
	return entry, nil
}

// RecordDeposit atomically increments the balance and appends a credit
// entry. No sufficiency check applies.
func (s *LedgerService) RecordDeposit(accountID uuid.UUID, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	s.logger.Info("Recording deposit", "account_id", accountID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	return s.credit(accountID, amount, "Deposit")
}

// AdminCredit is RecordDeposit against another user's account, permitted
// only for actors with the admin role. It is the sole cross-account
// mutation in the system.
func (s *LedgerService) AdminCredit(actorID, targetAccountID uuid.UUID, amount decimal.Decimal) (*domain.LedgerEntry, error) {
	s.logger.Info("Recording admin credit",
		"actor_id", actorID,
		"target_account_id", targetAccountID,
		"amount", amount)

	if _, err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	return s.credit(targetAccountID, amount, "Funds added by admin")
}

func (s *LedgerService) credit(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Kind:        domain.KindCredit,
		Amount:      amount,
		Description: description,
		Category:    domain.CategoryDeposit,
		Mode:        domain.ModeDeposit,
		OccurredAt:  time.Now().UTC(),
	}

	err := s.store.WithTransaction(func(tx domain.Store) error {
		account, err := tx.Accounts().GetAccountForUpdate(accountID)
		if err != nil {
			return err
		}
		if err := tx.Accounts().UpdateAccountBalance(account.ID, account.Balance.Add(amount)); err != nil {
			return err
		}
		return tx.Entries().CreateEntry(entry)
	})
	if err != nil {
		s.logger.Warn("Credit rejected", "account_id", accountID, "error", err)
		return nil, errors.FromStore(err)
	}

	s.publish(entry)
	s.logger.Info("Credit recorded", "entry_id", entry.ID, "account_id", accountID)
	return entry, nil
}

// GetBalance is a plain read, visible to the account owner and admins.
// It must never feed a subsequent write; the transactional operations
// re-read under lock for that.
func (s *LedgerService) GetBalance(actorID, accountID uuid.UUID) (decimal.Decimal, error) {
	if err := s.requireSelfOrAdmin(actorID, accountID); err != nil {
		return decimal.Zero, err
	}
	account, err := s.store.Accounts().GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *LedgerService) ListEntries(actorID, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	if err := s.requireSelfOrAdmin(actorID, accountID); err != nil {
		return nil, err
	}
	if _, err := s.store.Accounts().GetAccount(accountID); err != nil {
		return nil, err
	}
	return s.store.Entries().ListByAccount(accountID)
}

func (s *LedgerService) ListAllEntries(actorID uuid.UUID) ([]domain.LedgerEntry, error) {
	if _, err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}
	return s.store.Entries().ListAll()
}

func (s *LedgerService) ListAccounts(actorID uuid.UUID) ([]domain.Account, error) {
	if _, err := s.requireAdmin(actorID); err != nil {
		return nil, err
	}
	return s.store.Accounts().ListAccounts()
}

// requireSelfOrAdmin scopes a read to the account's owner; anyone else
// needs the admin role.
func (s *LedgerService) requireSelfOrAdmin(actorID, accountID uuid.UUID) error {
	if actorID == accountID {
		return nil
	}
	_, err := s.requireAdmin(actorID)
	return err
}

func (s *LedgerService) requireAdmin(actorID uuid.UUID) (*domain.Account, error) {
	actor, err := s.store.Accounts().GetAccount(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, errors.ErrUnauthorized
	}
	return actor, nil
}

// publish is best-effort: the entry is already committed, a broker hiccup
// must not fail the operation.
func (s *LedgerService) publish(entry *domain.LedgerEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.EntryRecorded{
		EntryID:    entry.ID.String(),
		AccountID:  entry.AccountID.String(),
		Kind:       string(entry.Kind),
		Amount:     entry.Amount.String(),
		Category:   string(entry.Category),
		Mode:       string(entry.Mode),
		OccurredAt: entry.OccurredAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish entry event", "entry_id", entry.ID, "error", err)
	}
}

func validateExpense(req *ExpenseRequest) error {
	if err := validateAmount(req.Amount); err != nil {
		return err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return errors.NewAppError(errors.ValidationError, "description cannot be empty")
	}
	if len(description) > 200 {
		return errors.NewAppError(errors.ValidationError, "description too long (max 200 characters)")
	}
	if !req.Category.ValidForExpense() {
		return errors.NewAppErrorf(errors.ValidationError, "unknown expense category %q", req.Category)
	}
	if !req.Mode.ValidForExpense() {
		return errors.NewAppErrorf(errors.ValidationError, "unknown payment mode %q", req.Mode)
	}
	return nil
}

// validateAmount rejects non-positive values and anything finer than two
// decimal places. The store keeps amounts at scale 2; a sub-cent value
// would be rounded there, desyncing the balance from the entry sum.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.NewAppError(errors.ValidationError, "amount must be positive")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return errors.NewAppError(errors.ValidationError, "amount cannot have more than two decimal places")
	}
	return nil
}
