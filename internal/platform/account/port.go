package account

import "context"

// Repository defines the interface for account data access
type Repository interface {
	// Create inserts the account and sets its ID
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account, ErrAccountNotFound when missing
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByIDs retrieves several accounts at once; missing ids are skipped
	GetByIDs(ctx context.Context, ids []int64) ([]*Account, error)

	// List retrieves all accounts ordered by id
	List(ctx context.Context) ([]*Account, error)

	// ListByType retrieves accounts of one type with their balances, ordered by name
	ListByType(ctx context.Context, accountType AccountType) ([]*DetailedAccount, error)

	// Delete removes an account. ErrAccountInUse when entries still reference it.
	Delete(ctx context.Context, id int64) error
}

// CurrencyChecker tells whether a currency code exists in master data
type CurrencyChecker interface {
	Exists(ctx context.Context, code string) (bool, error)
}
