package budget

import (
	"context"
	"time"

	"github.com/homebooks/ledger/internal/platform/account"
)

// Repository defines the interface for budget persistence
type Repository interface {
	Create(ctx context.Context, b *Budget) error
	GetByID(ctx context.Context, id int64) (*Budget, error)
	List(ctx context.Context) ([]*Budget, error)
	Delete(ctx context.Context, id int64) error

	// LockBudgets serialises period checks across concurrent creations.
	// Only meaningful inside BeginTx.
	LockBudgets(ctx context.Context) error

	// UpsertEntry sets the target of an account within a budget
	UpsertEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, budgetID, accountID int64) error
	ListEntries(ctx context.Context, budgetID int64) ([]*Entry, error)

	BeginTx(ctx context.Context) (context.Context, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error
}

// BalanceReader reads ledger balances restricted to a time window
type BalanceReader interface {
	AccountBalancesBetween(ctx context.Context, accountIDs []int64, from, to time.Time) (map[int64]int64, error)
}

// AccountReader resolves the accounts attached to a budget
type AccountReader interface {
	Get(ctx context.Context, id int64) (*account.Account, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*account.Account, error)
}
