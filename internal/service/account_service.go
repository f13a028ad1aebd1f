package service

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	"office-ledger/internal/errors"
)

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// CreateAccount registers a new account. Signup seeds balance 0; a non-zero
// seed is the admin provisioning path. Authentication itself happens
// upstream, the identity provider hands us an opaque authenticated id.
func (s *AccountService) CreateAccount(username string, role domain.Role, seedBalance decimal.Decimal) (*domain.Account, error) {
	s.logger.Info("Creating account", "username", username, "role", role)

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.NewAppError(errors.ValidationError, "username cannot be empty")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, errors.NewAppErrorf(errors.ValidationError, "unknown role %q", role)
	}
	if seedBalance.IsNegative() {
		return nil, errors.NewAppError(errors.ValidationError, "initial balance cannot be negative")
	}
	// Balances are stored at two decimal places; a finer seed would be
	// rounded by the store.
	if !seedBalance.Equal(seedBalance.Truncate(2)) {
		return nil, errors.NewAppError(errors.ValidationError, "initial balance cannot have more than two decimal places")
	}

	maxSeedBalance := decimal.NewFromInt(10_000_000_000)
	if seedBalance.GreaterThan(maxSeedBalance) {
		return nil, errors.NewAppError(errors.ValidationError, "initial balance exceeds maximum limit")
	}

	account := &domain.Account{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
		Balance:  seedBalance,
	}

	if err := s.store.Accounts().CreateAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created successfully", "account_id", account.ID, "username", account.Username)
	return account, nil
}

// GetAccount looks up an account for its owner; any other actor needs the
// admin role.
func (s *AccountService) GetAccount(actorID uuid.UUID, accountID string) (*domain.Account, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, errors.NewAppError(errors.ValidationError, "invalid account id")
	}
	if actorID != id {
		actor, err := s.store.Accounts().GetAccount(actorID)
		if err != nil {
			return nil, err
		}
		if !actor.IsAdmin() {
			return nil, errors.ErrUnauthorized
		}
	}
	return s.store.Accounts().GetAccount(id)
}
