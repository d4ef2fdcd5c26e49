package hierarchy

import (
	"fmt"
	"io"
	"strings"

	"github.com/homebooks/ledger/internal/platform/account"
)

// TreeNode is the serialisable form of a node and its subtree
type TreeNode struct {
	ID       int64                    `json:"id"`
	ParentID int64                    `json:"parent_id"`
	Name     string                   `json:"name"`
	Type     account.AccountType      `json:"type"`
	Kind     string                   `json:"kind"`
	Balance  int64                    `json:"balance"`
	Account  *account.DetailedAccount `json:"account,omitempty"`
	Children []*TreeNode              `json:"children"`
}

// Tree converts the forest into seven nested TreeNodes with balances filled in
func (f *Forest) Tree() []*TreeNode {
	roots := f.Roots()
	out := make([]*TreeNode, len(roots))
	for i, r := range roots {
		out[i] = f.treeNode(r)
	}
	return out
}

func (f *Forest) treeNode(n *Node) *TreeNode {
	t := &TreeNode{
		ID:       n.ID,
		ParentID: n.ParentID,
		Name:     n.Name,
		Type:     n.Type,
		Kind:     n.Kind.String(),
		Balance:  f.Balance(n),
		Account:  n.Account,
		Children: make([]*TreeNode, 0, len(n.children)),
	}
	for _, c := range f.Children(n) {
		t.Children = append(t.Children, f.treeNode(c))
	}
	return t
}

// Render writes the forest as an indented outline, one node per line,
// balances right-aligned in minor units
func (f *Forest) Render(w io.Writer) error {
	for _, r := range f.Roots() {
		if err := f.render(w, r, 0); err != nil {
			return err
		}
	}
	return nil
}

func (f *Forest) render(w io.Writer, n *Node, depth int) error {
	label := strings.Repeat("  ", depth) + n.Name
	if n.IsLeaf() {
		label += fmt.Sprintf(" [#%d %s]", n.Account.ID, n.Account.Currency)
	}
	if _, err := fmt.Fprintf(w, "%-48s %12d\n", label, f.Balance(n)); err != nil {
		return err
	}
	for _, c := range f.Children(n) {
		if err := f.render(w, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}
