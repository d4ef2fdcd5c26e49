package ledger

import (
	"context"
	"time"

	"github.com/homebooks/ledger/internal/platform/account"
)

// Repository defines the interface for ledger persistence operations
type Repository interface {
	// Transaction operations
	InsertTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	ListTransactions(ctx context.Context, filters TransactionFilters) ([]*Transaction, error)
	UpdateTransactionName(ctx context.Context, id int64, name string) error
	DeleteTransaction(ctx context.Context, id int64) error

	// Entry operations. Entries are written only alongside their transaction.
	InsertEntry(ctx context.Context, entry *Entry) error
	GetEntriesByTransaction(ctx context.Context, transactionID int64) ([]*Entry, error)
	// UpdateEntryMagnitudes sets both entries of a transaction and returns the rows touched
	UpdateEntryMagnitudes(ctx context.Context, transactionID int64, magnitude int64) (int64, error)

	// Balance operations, debits minus credits
	AccountBalance(ctx context.Context, accountID int64) (int64, error)
	AccountBalances(ctx context.Context, accountIDs []int64) (map[int64]int64, error)
	AccountBalancesBetween(ctx context.Context, accountIDs []int64, from, to time.Time) (map[int64]int64, error)

	// Integrity operations
	EntryTotals(ctx context.Context) (*Totals, error)
	UnpairedTransactions(ctx context.Context) ([]int64, error)

	// Transaction management
	BeginTx(ctx context.Context) (context.Context, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error
}

// AccountProvider resolves the two accounts of a transfer
type AccountProvider interface {
	GetPair(ctx context.Context, fromID, toID int64) (from, to *account.Account, err error)
}
