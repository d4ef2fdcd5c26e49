package hierarchy

import (
	"context"

	"github.com/homebooks/ledger/internal/platform/account"
)

// Repository defines the interface for hierarchy persistence
type Repository interface {
	// ListRows returns every stored node ordered by name. Leaf rows carry the
	// account's name, currency and balance.
	ListRows(ctx context.Context) ([]StorageRow, error)

	// GetRow returns a single node, ErrNodeNotFound when missing
	GetRow(ctx context.Context, id int64) (*StorageRow, error)

	// InsertGroup stores a group and returns its id
	InsertGroup(ctx context.Context, accountType account.AccountType, parentID int64, name string) (int64, error)

	// InsertLeaf stores a leaf for an account and returns its id.
	// ErrAccountPlaced when the account already has a node.
	InsertLeaf(ctx context.Context, acc *account.Account, parentID int64) (int64, error)

	// CountChildren counts the direct children of a node
	CountChildren(ctx context.Context, id int64) (int, error)

	// DeleteNode removes a node, ErrNodeNotFound when missing
	DeleteNode(ctx context.Context, id int64) error
}

// AccountLookup resolves accounts placed as leaves
type AccountLookup interface {
	Get(ctx context.Context, id int64) (*account.Account, error)
}
