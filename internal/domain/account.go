package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// Account holds a user's identity and the cached cash-on-hand balance.
// Balance is written only inside the ledger service's transactional path;
// nothing else may update it.
type Account struct {
	ID        uuid.UUID       `json:"account_id"`
	Username  string          `json:"username"`
	Role      Role            `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type AccountRepository interface {
	CreateAccount(account *Account) error
	GetAccount(id uuid.UUID) (*Account, error)
	// GetAccountForUpdate reads the account while holding a write lock on
	// its row; valid only inside a store transaction.
	GetAccountForUpdate(id uuid.UUID) (*Account, error)
	ListAccounts() ([]Account, error)
	UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error
}
