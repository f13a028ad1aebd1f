package domain

// Store is the persistence collaborator. WithTransaction runs fn against a
// transactional view: every write fn issues lands atomically or not at all,
// isolated from concurrent transactions touching the same accounts. All
// balance mutations go through it; plain Accounts()/Entries() access is for
// reads and standalone appends only.
type Store interface {
	Accounts() AccountRepository
	Entries() EntryRepository
	WithTransaction(fn func(Store) error) error
}
