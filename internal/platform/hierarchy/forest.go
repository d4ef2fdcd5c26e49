package hierarchy

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/pkg/logger"
)

// Forest is the seven type-rooted account trees. Nodes live in one arena and
// refer to each other by index; the first NumAccountTypes slots are the roots.
type Forest struct {
	nodes   []Node
	byID    map[int64]int
	orphans []Orphan
}

// Build assembles a forest from rows in any order.
//
// Each row is attached below the node its ParentID names, searched depth first
// from the root of the row's type. Leaves end every branch of that search.
// A row whose parent is not reachable yet waits in a pending map keyed by the
// parent id and is adopted when that parent is materialised. Rows still
// detached once input is exhausted are orphans and handled per policy.
func Build(rows []StorageRow, policy OrphanPolicy, log *logger.Logger) (*Forest, error) {
	f := newForest(len(rows))
	pending := make(map[int64][]int)

	for _, row := range rows {
		node, err := newNode(row)
		if err != nil {
			return nil, err
		}
		if _, dup := f.byID[node.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, node.ID)
		}

		idx := len(f.nodes)
		f.nodes = append(f.nodes, node)
		f.byID[node.ID] = idx

		if node.Kind == KindGroup {
			f.adopt(idx, pending)
		}

		if parent, ok := f.findParent(idx); ok {
			f.attach(parent, idx)
		} else {
			pending[node.ParentID] = append(pending[node.ParentID], idx)
		}
	}

	if err := f.resolveOrphans(policy); err != nil {
		return nil, err
	}

	if log != nil {
		for _, o := range f.orphans {
			log.Warn("orphan hierarchy node",
				"node_id", o.ID, "parent_id", o.ParentID, "type", o.Type.String(), "leaf", o.Leaf, "action", string(o.Action))
		}
	}
	return f, nil
}

func newForest(capacity int) *Forest {
	f := &Forest{
		nodes: make([]Node, 0, account.NumAccountTypes+capacity),
		byID:  make(map[int64]int, account.NumAccountTypes+capacity),
	}
	for _, t := range account.AllAccountTypes() {
		f.nodes = append(f.nodes, Node{
			ID:       int64(t),
			ParentID: int64(t),
			Type:     t,
			Kind:     KindGroup,
			Name:     t.String(),
			parent:   -1,
		})
		f.byID[int64(t)] = int(t)
	}
	return f
}

// adopt moves same-type nodes waiting for idx under it
func (f *Forest) adopt(idx int, pending map[int64][]int) {
	id := f.nodes[idx].ID
	waiting, ok := pending[id]
	if !ok {
		return
	}

	var rest []int
	for _, child := range waiting {
		if f.nodes[child].Type == f.nodes[idx].Type {
			f.attach(idx, child)
		} else {
			rest = append(rest, child)
		}
	}
	if len(rest) > 0 {
		pending[id] = rest
	} else {
		delete(pending, id)
	}
}

// findParent locates the arena slot the node at idx should hang under
func (f *Forest) findParent(idx int) (int, bool) {
	node := &f.nodes[idx]
	if parent, ok := f.search(int(node.Type), node.ParentID); ok {
		return parent, true
	}

	// The parent may exist but still be detached itself. Linking to it lets
	// the subtree travel with it once it is attached.
	parent, ok := f.byID[node.ParentID]
	if !ok || parent == idx {
		return 0, false
	}
	p := &f.nodes[parent]
	if p.Kind != KindGroup || p.Type != node.Type || f.isAncestor(idx, parent) {
		return 0, false
	}
	return parent, true
}

// search walks depth first from start looking for a group with the given id
func (f *Forest) search(start int, id int64) (int, bool) {
	n := &f.nodes[start]
	if n.Kind == KindLeaf {
		return 0, false
	}
	if n.ID == id {
		return start, true
	}
	for _, child := range n.children {
		if found, ok := f.search(child, id); ok {
			return found, true
		}
	}
	return 0, false
}

// isAncestor reports whether anc is on the parent chain of idx (or is idx)
func (f *Forest) isAncestor(anc, idx int) bool {
	for cur := idx; cur >= 0; cur = f.nodes[cur].parent {
		if cur == anc {
			return true
		}
	}
	return false
}

func (f *Forest) attach(parent, child int) {
	f.nodes[child].parent = parent
	f.nodes[parent].children = append(f.nodes[parent].children, child)
}

// resolveOrphans deals with every non-root node that never got a parent
func (f *Forest) resolveOrphans(policy OrphanPolicy) error {
	var detached []int
	for idx := account.NumAccountTypes; idx < len(f.nodes); idx++ {
		if f.nodes[idx].parent < 0 {
			detached = append(detached, idx)
		}
	}
	if len(detached) == 0 {
		return nil
	}

	if policy == PolicyStrict {
		var err error
		for _, idx := range detached {
			n := &f.nodes[idx]
			err = multierr.Append(err, fmt.Errorf("%w: %s %d declares parent %d",
				ErrOrphanNode, n.Kind, n.ID, n.ParentID))
		}
		return err
	}

	for _, idx := range detached {
		n := &f.nodes[idx]
		orphan := Orphan{ID: n.ID, ParentID: n.ParentID, Type: n.Type, Leaf: n.IsLeaf()}

		if n.IsLeaf() {
			f.attach(int(n.Type), idx)
			orphan.Action = OrphanReattached
		} else {
			for _, leaf := range f.dropGroup(idx) {
				f.attach(int(f.nodes[leaf].Type), leaf)
			}
			orphan.Action = OrphanDropped
		}
		f.orphans = append(f.orphans, orphan)
	}
	return nil
}

// dropGroup removes a detached group and every group below it, returning the
// leaves that hung beneath them in depth-first order
func (f *Forest) dropGroup(idx int) []int {
	var leaves []int
	var walk func(int)
	walk = func(i int) {
		n := &f.nodes[i]
		if n.IsLeaf() {
			leaves = append(leaves, i)
			return
		}
		n.dropped = true
		delete(f.byID, n.ID)
		for _, child := range n.children {
			walk(child)
		}
		n.children = nil
	}
	walk(idx)
	return leaves
}

// Root returns the root node of an account type
func (f *Forest) Root(t account.AccountType) *Node {
	if !t.IsValid() {
		return nil
	}
	return &f.nodes[int(t)]
}

// Roots returns the seven roots in type order
func (f *Forest) Roots() []*Node {
	roots := make([]*Node, account.NumAccountTypes)
	for i := range roots {
		roots[i] = &f.nodes[i]
	}
	return roots
}

// Node looks a node up by id
func (f *Forest) Node(id int64) (*Node, bool) {
	idx, ok := f.byID[id]
	if !ok {
		return nil, false
	}
	return &f.nodes[idx], true
}

// Children returns a node's children in insertion order
func (f *Forest) Children(n *Node) []*Node {
	out := make([]*Node, len(n.children))
	for i, idx := range n.children {
		out[i] = &f.nodes[idx]
	}
	return out
}

// Balance is a leaf's account balance, or the sum over a group's subtree.
// Computed on every call.
func (f *Forest) Balance(n *Node) int64 {
	switch n.Kind {
	case KindLeaf:
		return n.Account.Balance
	default:
		var sum int64
		for _, idx := range n.children {
			sum += f.Balance(&f.nodes[idx])
		}
		return sum
	}
}

// Orphans lists the nodes the build had to reattach or drop
func (f *Forest) Orphans() []Orphan {
	return f.orphans
}

// Len counts the nodes reachable from the roots, roots included
func (f *Forest) Len() int {
	count := 0
	var walk func(int)
	walk = func(i int) {
		count++
		for _, c := range f.nodes[i].children {
			walk(c)
		}
	}
	for i := 0; i < account.NumAccountTypes; i++ {
		walk(i)
	}
	return count
}
