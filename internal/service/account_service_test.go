package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"office-ledger/internal/domain"
	"office-ledger/internal/errors"
	"office-ledger/internal/repository"
)

func newTestAccounts(t *testing.T) *AccountService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAccountService(repository.NewMemoryStore(), logger)
}

func TestCreateAccount(t *testing.T) {
	svc := newTestAccounts(t)

	account, err := svc.CreateAccount("ravi", domain.RoleUser, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "ravi", account.Username)
	assert.Equal(t, domain.RoleUser, account.Role)
	assert.True(t, account.Balance.IsZero())

	got, err := svc.GetAccount(account.ID, account.ID.String())
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestCreateAccountDefaultsToUserRole(t *testing.T) {
	svc := newTestAccounts(t)

	account, err := svc.CreateAccount("ravi", "", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, account.Role)
}

func TestCreateAccountValidation(t *testing.T) {
	svc := newTestAccounts(t)

	cases := []struct {
		name     string
		username string
		role     domain.Role
		seed     decimal.Decimal
	}{
		{"empty username", "  ", domain.RoleUser, decimal.Zero},
		{"unknown role", "ravi", "superuser", decimal.Zero},
		{"negative seed", "ravi", domain.RoleUser, decimal.NewFromInt(-1)},
		{"absurd seed", "ravi", domain.RoleUser, decimal.NewFromInt(20_000_000_000)},
		{"sub-cent seed", "ravi", domain.RoleUser, decimal.RequireFromString("100.005")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAccount(tc.username, tc.role, tc.seed)
			require.Error(t, err)
			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, errors.ValidationError, appErr.Code)
		})
	}
}

func TestCreateAccountDuplicateUsername(t *testing.T) {
	svc := newTestAccounts(t)

	_, err := svc.CreateAccount("ravi", domain.RoleUser, decimal.Zero)
	require.NoError(t, err)

	_, err = svc.CreateAccount("ravi", domain.RoleUser, decimal.Zero)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.DuplicateAccount, appErr.Code)
}

func TestGetAccountScopedToOwner(t *testing.T) {
	svc := newTestAccounts(t)

	owner, err := svc.CreateAccount("ravi", domain.RoleUser, decimal.Zero)
	require.NoError(t, err)
	other, err := svc.CreateAccount("mallory", domain.RoleUser, decimal.Zero)
	require.NoError(t, err)
	admin, err := svc.CreateAccount("admin", domain.RoleAdmin, decimal.Zero)
	require.NoError(t, err)

	_, err = svc.GetAccount(owner.ID, owner.ID.String())
	require.NoError(t, err)

	_, err = svc.GetAccount(other.ID, owner.ID.String())
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.Unauthorized, appErr.Code)

	got, err := svc.GetAccount(admin.ID, owner.ID.String())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
}

func TestGetAccountInvalidID(t *testing.T) {
	svc := newTestAccounts(t)

	_, err := svc.GetAccount(uuid.New(), "not-a-uuid")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ValidationError, appErr.Code)
}
