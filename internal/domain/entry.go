package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

func (k Kind) Valid() bool {
	switch k {
	case KindDebit, KindCredit:
		return true
	}
	return false
}

// Category tags an entry for reporting. The set is closed; anything outside
// it is rejected at the validation boundary.
type Category string

const (
	CategoryStaffWelfare Category = "Staff Welfare"
	CategoryStationary   Category = "Stationary Expenses"
	CategoryPooja        Category = "Pooja Expenses"
	CategoryElectricity  Category = "Electricity Charges"
	// CategoryDeposit is reserved for credit entries.
	CategoryDeposit Category = "Deposit"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryStaffWelfare, CategoryStationary, CategoryPooja, CategoryElectricity, CategoryDeposit:
		return true
	}
	return false
}

func (c Category) ValidForExpense() bool {
	return c.Valid() && c != CategoryDeposit
}

// Mode is the payment mode. Only Cash moves cash-on-hand: NEFT and IMPS
// debits are recorded for audit but leave the balance untouched.
type Mode string

const (
	ModeCash Mode = "Cash"
	ModeNEFT Mode = "NEFT"
	ModeIMPS Mode = "IMPS"
	// ModeDeposit is reserved for credit entries.
	ModeDeposit Mode = "Deposit"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeCash, ModeNEFT, ModeIMPS, ModeDeposit:
		return true
	}
	return false
}

func (m Mode) ValidForExpense() bool {
	return m.Valid() && m != ModeDeposit
}

func (m Mode) AffectsCash() bool {
	return m == ModeCash
}

// LedgerEntry is the immutable record of one money movement. Amount is
// always positive; the direction is carried by Kind. Entries are never
// updated in place, corrections are new offsetting entries.
type LedgerEntry struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Mode        Mode            `json:"mode"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

type EntryRepository interface {
	CreateEntry(entry *LedgerEntry) error
	ListByAccount(accountID uuid.UUID) ([]LedgerEntry, error)
	ListAll() ([]LedgerEntry, error)
}
