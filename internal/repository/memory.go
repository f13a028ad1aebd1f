package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"office-ledger/internal/domain"
	apperrors "office-ledger/internal/errors"
)

// MemoryStore implements domain.Store with mutex-guarded in-process state.
// A transaction holds the lock for its whole duration and restores a
// snapshot on failure, so transactional units are serialized and
// all-or-nothing, matching the contract the SQL stores provide.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]domain.Account
	entries  []domain.LedgerEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]domain.Account),
	}
}

var _ domain.Store = (*MemoryStore)(nil)

func (m *MemoryStore) Accounts() domain.AccountRepository {
	return &memAccountRepository{store: m, locking: true}
}

func (m *MemoryStore) Entries() domain.EntryRepository {
	return &memEntryRepository{store: m, locking: true}
}

func (m *MemoryStore) WithTransaction(fn func(domain.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapAccounts := make(map[uuid.UUID]domain.Account, len(m.accounts))
	for id, account := range m.accounts {
		snapAccounts[id] = account
	}
	snapEntries := make([]domain.LedgerEntry, len(m.entries))
	copy(snapEntries, m.entries)

	if err := fn(&memTxStore{store: m}); err != nil {
		m.accounts = snapAccounts
		m.entries = snapEntries
		return err
	}
	return nil
}

// memTxStore is the transactional view handed to WithTransaction callbacks.
// The store lock is already held, so its repositories skip locking.
type memTxStore struct {
	store *MemoryStore
}

func (t *memTxStore) Accounts() domain.AccountRepository {
	return &memAccountRepository{store: t.store}
}

func (t *memTxStore) Entries() domain.EntryRepository {
	return &memEntryRepository{store: t.store}
}

func (t *memTxStore) WithTransaction(fn func(domain.Store) error) error {
	return fn(t)
}

type memAccountRepository struct {
	store   *MemoryStore
	locking bool
}

func (r *memAccountRepository) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memAccountRepository) CreateAccount(account *domain.Account) error {
	defer r.lock()()

	for _, existing := range r.store.accounts {
		if existing.Username == account.Username {
			return apperrors.ErrDuplicateAccount
		}
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.store.accounts[account.ID] = *account
	return nil
}

func (r *memAccountRepository) GetAccount(id uuid.UUID) (*domain.Account, error) {
	defer r.lock()()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &account, nil
}

func (r *memAccountRepository) GetAccountForUpdate(id uuid.UUID) (*domain.Account, error) {
	return r.GetAccount(id)
}

func (r *memAccountRepository) ListAccounts() ([]domain.Account, error) {
	defer r.lock()()

	accounts := make([]domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (r *memAccountRepository) UpdateAccountBalance(id uuid.UUID, newBalance decimal.Decimal) error {
	defer r.lock()()

	account, ok := r.store.accounts[id]
	if !ok {
		return apperrors.ErrAccountNotFound
	}
	account.Balance = newBalance
	account.UpdatedAt = time.Now().UTC()
	r.store.accounts[id] = account
	return nil
}

type memEntryRepository struct {
	store   *MemoryStore
	locking bool
}

func (r *memEntryRepository) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memEntryRepository) CreateEntry(entry *domain.LedgerEntry) error {
	defer r.lock()()

	// mirrors the SQL schema's kind CHECK constraint
	if !entry.Kind.Valid() {
		return apperrors.NewAppErrorf(apperrors.ValidationError, "invalid entry kind %q", entry.Kind)
	}

	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *memEntryRepository) ListByAccount(accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	defer r.lock()()

	var entries []domain.LedgerEntry
	for _, entry := range r.store.entries {
		if entry.AccountID == accountID {
			entries = append(entries, entry)
		}
	}
	sortEntriesNewestFirst(entries)
	return entries, nil
}

func (r *memEntryRepository) ListAll() ([]domain.LedgerEntry, error) {
	defer r.lock()()

	entries := make([]domain.LedgerEntry, len(r.store.entries))
	copy(entries, r.store.entries)
	sortEntriesNewestFirst(entries)
	return entries, nil
}

func sortEntriesNewestFirst(entries []domain.LedgerEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
}
