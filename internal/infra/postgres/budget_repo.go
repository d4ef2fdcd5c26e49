package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homebooks/ledger/internal/platform/budget"
)

// BudgetRepository implements budget.Repository using PostgreSQL
type BudgetRepository struct {
	txManager
}

// NewBudgetRepository creates a new PostgreSQL budget repository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{txManager{pool: pool}}
}

// Create inserts a budget and sets its ID
func (r *BudgetRepository) Create(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (name, open_at, close_at, target)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := r.q(ctx).QueryRow(ctx, query, b.Name, b.Open, b.Close, b.Target).Scan(&b.ID); err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByID retrieves a budget
func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*budget.Budget, error) {
	b, err := scanBudget(r.q(ctx).QueryRow(ctx,
		`SELECT id, name, open_at, close_at, target FROM budgets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, budget.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

// List retrieves every budget ordered by open
func (r *BudgetRepository) List(ctx context.Context) ([]*budget.Budget, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT id, name, open_at, close_at, target FROM budgets ORDER BY open_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var out []*budget.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return out, nil
}

// Delete removes a budget; its entries cascade
func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return budget.ErrBudgetNotFound
	}
	return nil
}

// LockBudgets takes an exclusive lock on the budgets table for the rest of
// the current transaction. Readers are not blocked.
func (r *BudgetRepository) LockBudgets(ctx context.Context) error {
	if txFromContext(ctx) == nil {
		return fmt.Errorf("LockBudgets requires a transaction")
	}
	if _, err := r.q(ctx).Exec(ctx, `LOCK TABLE budgets IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("failed to lock budgets: %w", err)
	}
	return nil
}

// UpsertEntry sets an account's target within a budget and sets the entry ID
func (r *BudgetRepository) UpsertEntry(ctx context.Context, e *budget.Entry) error {
	query := `
		INSERT INTO budget_entries (budget_id, account_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (budget_id, account_id) DO UPDATE SET balance = EXCLUDED.balance
		RETURNING id
	`

	err := r.q(ctx).QueryRow(ctx, query, e.BudgetID, e.AccountID, e.Balance).Scan(&e.ID)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: budget %d or account %d no longer exists", budget.ErrBudgetNotFound, e.BudgetID, e.AccountID)
		}
		return fmt.Errorf("failed to upsert budget entry: %w", err)
	}
	return nil
}

// DeleteEntry detaches an account from a budget
func (r *BudgetRepository) DeleteEntry(ctx context.Context, budgetID, accountID int64) error {
	tag, err := r.q(ctx).Exec(ctx,
		`DELETE FROM budget_entries WHERE budget_id = $1 AND account_id = $2`, budgetID, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete budget entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return budget.ErrEntryNotFound
	}
	return nil
}

// ListEntries lists the entries of a budget ordered by account
func (r *BudgetRepository) ListEntries(ctx context.Context, budgetID int64) ([]*budget.Entry, error) {
	rows, err := r.q(ctx).Query(ctx, `
		SELECT id, budget_id, account_id, balance
		FROM budget_entries
		WHERE budget_id = $1
		ORDER BY account_id
	`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget entries: %w", err)
	}
	defer rows.Close()

	entries := []*budget.Entry{}
	for rows.Next() {
		var e budget.Entry
		if err := rows.Scan(&e.ID, &e.BudgetID, &e.AccountID, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan budget entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget entries: %w", err)
	}
	return entries, nil
}

func scanBudget(row pgx.Row) (*budget.Budget, error) {
	var b budget.Budget
	if err := row.Scan(&b.ID, &b.Name, &b.Open, &b.Close, &b.Target); err != nil {
		return nil, err
	}
	b.Open = b.Open.UTC()
	b.Close = b.Close.UTC()
	return &b, nil
}
