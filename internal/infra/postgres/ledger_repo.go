package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homebooks/ledger/internal/ledger"
)

// LedgerRepository implements ledger.Repository using PostgreSQL
type LedgerRepository struct {
	txManager
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{txManager{pool: pool}}
}

// Transaction operations

// InsertTransaction inserts the transaction row and sets its ID
func (r *LedgerRepository) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (occurred_at, name)
		VALUES ($1, $2)
		RETURNING id
	`

	if err := r.q(ctx).QueryRow(ctx, query, tx.OccurredAt, tx.Name).Scan(&tx.ID); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction row without its entries
func (r *LedgerRepository) GetTransaction(ctx context.Context, id int64) (*ledger.Transaction, error) {
	query := `SELECT id, occurred_at, name FROM transactions WHERE id = $1`

	var tx ledger.Transaction
	err := r.q(ctx).QueryRow(ctx, query, id).Scan(&tx.ID, &tx.OccurredAt, &tx.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	tx.OccurredAt = tx.OccurredAt.UTC()
	return &tx, nil
}

// ListTransactions lists transactions newest first with their entries
func (r *LedgerRepository) ListTransactions(ctx context.Context, filters ledger.TransactionFilters) ([]*ledger.Transaction, error) {
	query := `SELECT t.id, t.occurred_at, t.name FROM transactions t WHERE 1=1`
	args := make([]interface{}, 0)
	argPos := 1

	if filters.AccountID != nil {
		query += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM entries e WHERE e.transaction_id = t.id AND e.account_id = $%d)", argPos)
		args = append(args, *filters.AccountID)
		argPos++
	}

	if filters.From != nil {
		query += fmt.Sprintf(" AND t.occurred_at >= $%d", argPos)
		args = append(args, *filters.From)
		argPos++
	}

	if filters.To != nil {
		query += fmt.Sprintf(" AND t.occurred_at < $%d", argPos)
		args = append(args, *filters.To)
		argPos++
	}

	query += " ORDER BY t.occurred_at DESC, t.id DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filters.Limit)
		argPos++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filters.Offset)
	}

	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var (
		txs []*ledger.Transaction
		ids []int64
	)
	byID := make(map[int64]*ledger.Transaction)
	for rows.Next() {
		var tx ledger.Transaction
		if err := rows.Scan(&tx.ID, &tx.OccurredAt, &tx.Name); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.OccurredAt = tx.OccurredAt.UTC()
		tx.Entries = []*ledger.Entry{}
		txs = append(txs, &tx)
		ids = append(ids, tx.ID)
		byID[tx.ID] = &tx
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	if len(ids) == 0 {
		return txs, nil
	}

	entries, err := r.entriesWhere(ctx, "e.transaction_id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if tx, ok := byID[e.TransactionID]; ok {
			tx.Entries = append(tx.Entries, e)
		}
	}

	return txs, nil
}

// UpdateTransactionName renames a transaction
func (r *LedgerRepository) UpdateTransactionName(ctx context.Context, id int64, name string) error {
	tag, err := r.q(ctx).Exec(ctx, `UPDATE transactions SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction; entries cascade
func (r *LedgerRepository) DeleteTransaction(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

// Entry operations

// InsertEntry inserts one side of a transaction and sets its ID
func (r *LedgerRepository) InsertEntry(ctx context.Context, entry *ledger.Entry) error {
	query := `
		INSERT INTO entries (transaction_id, account_id, kind, magnitude)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.q(ctx).QueryRow(ctx, query,
		entry.TransactionID,
		entry.AccountID,
		string(entry.Kind),
		entry.Magnitude,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// GetEntriesByTransaction returns a transaction's entries, debit first
func (r *LedgerRepository) GetEntriesByTransaction(ctx context.Context, transactionID int64) ([]*ledger.Entry, error) {
	return r.entriesWhere(ctx, "e.transaction_id = $1", transactionID)
}

func (r *LedgerRepository) entriesWhere(ctx context.Context, cond string, arg any) ([]*ledger.Entry, error) {
	query := `
		SELECT e.id, e.transaction_id, e.account_id, a.name, e.kind, e.magnitude
		FROM entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE ` + cond + `
		ORDER BY e.transaction_id, e.kind DESC, e.id
	`

	rows, err := r.q(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var (
			e    ledger.Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.AccountName, &kind, &e.Magnitude); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Kind = ledger.EntryKind(kind)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}

// UpdateEntryMagnitudes sets the magnitude of every entry of a transaction
func (r *LedgerRepository) UpdateEntryMagnitudes(ctx context.Context, transactionID int64, magnitude int64) (int64, error) {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE entries SET magnitude = $2 WHERE transaction_id = $1`, transactionID, magnitude)
	if err != nil {
		return 0, fmt.Errorf("failed to update entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Balance operations

// AccountBalance sums an account's entries, debits minus credits
func (r *LedgerRepository) AccountBalance(ctx context.Context, accountID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(` + signedMagnitude + `), 0)::BIGINT FROM entries e WHERE e.account_id = $1`

	var balance int64
	if err := r.q(ctx).QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to get account balance: %w", err)
	}
	return balance, nil
}

// AccountBalances returns the balance of every listed account that has entries
func (r *LedgerRepository) AccountBalances(ctx context.Context, accountIDs []int64) (map[int64]int64, error) {
	query := `
		SELECT e.account_id, SUM(` + signedMagnitude + `)::BIGINT
		FROM entries e
		WHERE e.account_id = ANY($1)
		GROUP BY e.account_id
	`
	return r.balances(ctx, query, accountIDs)
}

// AccountBalancesBetween is AccountBalances limited to from <= occurred_at < to
func (r *LedgerRepository) AccountBalancesBetween(ctx context.Context, accountIDs []int64, from, to time.Time) (map[int64]int64, error) {
	query := `
		SELECT e.account_id, SUM(` + signedMagnitude + `)::BIGINT
		FROM entries e
		JOIN transactions t ON t.id = e.transaction_id
		WHERE e.account_id = ANY($1)
		  AND t.occurred_at >= $2
		  AND t.occurred_at < $3
		GROUP BY e.account_id
	`
	return r.balances(ctx, query, accountIDs, from, to)
}

func (r *LedgerRepository) balances(ctx context.Context, query string, args ...any) (map[int64]int64, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[int64]int64)
	for rows.Next() {
		var id, balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances[id] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return balances, nil
}

// Integrity operations

// EntryTotals sums every debit and every credit in the ledger
func (r *LedgerRepository) EntryTotals(ctx context.Context) (*ledger.Totals, error) {
	query := `
		SELECT COALESCE(SUM(magnitude) FILTER (WHERE kind = 'DEBIT'), 0)::BIGINT,
		       COALESCE(SUM(magnitude) FILTER (WHERE kind = 'CREDIT'), 0)::BIGINT,
		       COUNT(*)
		FROM entries
	`

	var totals ledger.Totals
	if err := r.q(ctx).QueryRow(ctx, query).Scan(&totals.Debits, &totals.Credits, &totals.Entries); err != nil {
		return nil, fmt.Errorf("failed to sum entries: %w", err)
	}
	return &totals, nil
}

// UnpairedTransactions lists transactions whose entries are not exactly one
// debit and one credit of equal magnitude
func (r *LedgerRepository) UnpairedTransactions(ctx context.Context) ([]int64, error) {
	query := `
		SELECT t.id
		FROM transactions t
		LEFT JOIN entries e ON e.transaction_id = t.id
		GROUP BY t.id
		HAVING COUNT(e.id) <> 2
		    OR COUNT(*) FILTER (WHERE e.kind = 'DEBIT') <> 1
		    OR MIN(e.magnitude) <> MAX(e.magnitude)
		ORDER BY t.id
	`

	rows, err := r.q(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find unpaired transactions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan unpaired transactions: %w", err)
	}
	return ids, nil
}
