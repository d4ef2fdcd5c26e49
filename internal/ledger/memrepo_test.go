package ledger_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
)

type txKey struct{}

// memRepo is an in-memory ledger.Repository. BeginTx snapshots the state and
// RollbackTx restores it, which is enough to observe atomicity in
// single-writer tests.
type memRepo struct {
	mu        sync.Mutex
	nextTxID  int64
	nextEntry int64
	txs       map[int64]*ledger.Transaction
	entries   map[int64]*ledger.Entry

	// failure injection
	failInsertEntry func(*ledger.Entry) error
	failCommit      error

	lastInsertedTx int64
	rollbacks      int
}

type memSnapshot struct {
	txs     map[int64]*ledger.Transaction
	entries map[int64]*ledger.Entry
}

func newMemRepo() *memRepo {
	return &memRepo{
		txs:     map[int64]*ledger.Transaction{},
		entries: map[int64]*ledger.Entry{},
	}
}

func (r *memRepo) BeginTx(ctx context.Context) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := &memSnapshot{txs: map[int64]*ledger.Transaction{}, entries: map[int64]*ledger.Entry{}}
	for k, v := range r.txs {
		c := *v
		snap.txs[k] = &c
	}
	for k, v := range r.entries {
		c := *v
		snap.entries[k] = &c
	}
	return context.WithValue(ctx, txKey{}, snap), nil
}

func (r *memRepo) CommitTx(ctx context.Context) error {
	if r.failCommit != nil {
		return r.failCommit
	}
	return nil
}

func (r *memRepo) RollbackTx(ctx context.Context) error {
	snap, ok := ctx.Value(txKey{}).(*memSnapshot)
	if !ok {
		return errors.New("no transaction in context")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = snap.txs
	r.entries = snap.entries
	r.rollbacks++
	return nil
}

func (r *memRepo) InsertTransaction(_ context.Context, tx *ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTxID++
	tx.ID = r.nextTxID
	c := *tx
	c.Entries = nil
	r.txs[tx.ID] = &c
	r.lastInsertedTx = tx.ID
	return nil
}

func (r *memRepo) InsertEntry(_ context.Context, e *ledger.Entry) error {
	if r.failInsertEntry != nil {
		if err := r.failInsertEntry(e); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextEntry++
	e.ID = r.nextEntry
	c := *e
	r.entries[e.ID] = &c
	return nil
}

func (r *memRepo) GetTransaction(_ context.Context, id int64) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	c := *tx
	return &c, nil
}

func (r *memRepo) entriesOf(txID int64) []*ledger.Entry {
	var out []*ledger.Entry
	for _, e := range r.entries {
		if e.TransactionID == txID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memRepo) GetEntriesByTransaction(_ context.Context, txID int64) ([]*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entriesOf(txID), nil
}

func (r *memRepo) ListTransactions(_ context.Context, f ledger.TransactionFilters) ([]*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ledger.Transaction
	for _, tx := range r.txs {
		if f.From != nil && tx.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !tx.OccurredAt.Before(*f.To) {
			continue
		}
		c := *tx
		c.Entries = r.entriesOf(tx.ID)
		if f.AccountID != nil {
			found := false
			for _, e := range c.Entries {
				found = found || e.AccountID == *f.AccountID
			}
			if !found {
				continue
			}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memRepo) UpdateTransactionName(_ context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok {
		return ledger.ErrTransactionNotFound
	}
	tx.Name = name
	return nil
}

func (r *memRepo) UpdateEntryMagnitudes(_ context.Context, txID int64, magnitude int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, e := range r.entries {
		if e.TransactionID == txID {
			e.Magnitude = magnitude
			n++
		}
	}
	return n, nil
}

func (r *memRepo) DeleteTransaction(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[id]; !ok {
		return ledger.ErrTransactionNotFound
	}
	delete(r.txs, id)
	for eid, e := range r.entries {
		if e.TransactionID == id {
			delete(r.entries, eid)
		}
	}
	return nil
}

func (r *memRepo) AccountBalance(_ context.Context, accountID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.AccountID == accountID {
			sum += e.Signed()
		}
	}
	return sum, nil
}

func (r *memRepo) AccountBalances(ctx context.Context, ids []int64) (map[int64]int64, error) {
	return r.AccountBalancesBetween(ctx, ids, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (r *memRepo) AccountBalancesBetween(_ context.Context, ids []int64, from, to time.Time) (map[int64]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := map[int64]int64{}
	for _, e := range r.entries {
		tx := r.txs[e.TransactionID]
		if !want[e.AccountID] || tx == nil || tx.OccurredAt.Before(from) || !tx.OccurredAt.Before(to) {
			continue
		}
		out[e.AccountID] += e.Signed()
	}
	return out, nil
}

func (r *memRepo) EntryTotals(_ context.Context) (*ledger.Totals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &ledger.Totals{}
	for _, e := range r.entries {
		if e.Kind == ledger.Debit {
			t.Debits += e.Magnitude
		} else {
			t.Credits += e.Magnitude
		}
		t.Entries++
	}
	return t, nil
}

func (r *memRepo) UnpairedTransactions(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int64
	for id := range r.txs {
		if len(r.entriesOf(id)) != 2 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// corrupt writes an entry outside the service, as a manual edit would
func (r *memRepo) corrupt(e ledger.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextEntry++
	e.ID = r.nextEntry
	r.entries[e.ID] = &e
}

// memAccounts is a fixed set of accounts implementing ledger.AccountProvider
type memAccounts map[int64]*account.Account

func (m memAccounts) GetPair(_ context.Context, fromID, toID int64) (*account.Account, *account.Account, error) {
	from, ok := m[fromID]
	if !ok {
		return nil, nil, account.ErrAccountNotFound
	}
	to, ok := m[toID]
	if !ok {
		return nil, nil, account.ErrAccountNotFound
	}
	return from, to, nil
}
