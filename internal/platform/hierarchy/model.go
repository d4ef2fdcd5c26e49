package hierarchy

import (
	"fmt"

	"github.com/homebooks/ledger/internal/platform/account"
)

// StorageRow is one flattened hierarchy node as the repository returns it.
// Leaf rows carry the attached account's fields, group rows carry a name.
type StorageRow struct {
	ID          int64
	ParentID    int64
	Name        *string
	AccountID   *int64
	Type        account.AccountType
	AccountName *string
	Balance     *int64
	Currency    *string
	IsLeaf      bool
}

// NodeKind tells groups and leaves apart
type NodeKind int

const (
	KindGroup NodeKind = iota
	KindLeaf
)

func (k NodeKind) String() string {
	if k == KindLeaf {
		return "leaf"
	}
	return "group"
}

// Node is one element of the forest. Groups hold children, leaves hold an
// account; a node is never both.
type Node struct {
	ID       int64
	ParentID int64
	Type     account.AccountType
	Kind     NodeKind
	Name     string
	Account  *account.DetailedAccount

	children []int
	parent   int // arena index, detached while negative
	dropped  bool
}

// IsLeaf reports whether the node wraps an account
func (n *Node) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// IsRoot reports whether the node is one of the seven type roots
func (n *Node) IsRoot() bool {
	return n.ID == n.ParentID && n.ID == int64(n.Type)
}

// newNode materialises a storage row
func newNode(row StorageRow) (Node, error) {
	if !row.Type.IsValid() {
		return Node{}, fmt.Errorf("%w: node %d has type %d", ErrMalformedRow, row.ID, int(row.Type))
	}
	if row.ID < account.NumAccountTypes {
		return Node{}, fmt.Errorf("%w: node id %d is reserved for a root", ErrMalformedRow, row.ID)
	}

	n := Node{ID: row.ID, ParentID: row.ParentID, Type: row.Type, parent: -1}

	if row.IsLeaf {
		if row.AccountID == nil || row.AccountName == nil || row.Balance == nil || row.Currency == nil {
			return Node{}, fmt.Errorf("%w: leaf %d is missing account fields", ErrMalformedRow, row.ID)
		}
		n.Kind = KindLeaf
		n.Name = *row.AccountName
		n.Account = &account.DetailedAccount{
			Account: account.Account{
				ID:       *row.AccountID,
				Type:     row.Type,
				Name:     *row.AccountName,
				Currency: *row.Currency,
			},
			Balance: *row.Balance,
		}
		return n, nil
	}

	if row.Name == nil {
		return Node{}, fmt.Errorf("%w: group %d has no name", ErrMalformedRow, row.ID)
	}
	n.Kind = KindGroup
	n.Name = *row.Name
	return n, nil
}

// OrphanAction says what a build did with an orphan
type OrphanAction string

const (
	OrphanReattached OrphanAction = "reattached"
	OrphanDropped    OrphanAction = "dropped"
)

// Orphan describes a node whose declared parent was never reachable
type Orphan struct {
	ID       int64               `json:"id"`
	ParentID int64               `json:"parent_id"`
	Type     account.AccountType `json:"type"`
	Leaf     bool                `json:"leaf"`
	Action   OrphanAction        `json:"action"`
}

// OrphanPolicy decides what a build does with orphans
type OrphanPolicy string

const (
	// PolicyReattach keeps every leaf visible by moving orphaned leaves, and
	// leaves below orphaned groups, directly under their type root.
	// Orphaned groups are dropped.
	PolicyReattach OrphanPolicy = "reattach"
	// PolicyStrict fails the build when any orphan remains
	PolicyStrict OrphanPolicy = "strict"
)

// ParseOrphanPolicy maps a configuration value to a policy
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch OrphanPolicy(s) {
	case PolicyReattach, "":
		return PolicyReattach, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown orphan policy %q", s)
}
