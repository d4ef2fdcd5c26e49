package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/internal/platform/hierarchy"
)

// HierarchyRepository implements hierarchy.Repository using PostgreSQL
type HierarchyRepository struct {
	txManager
}

// NewHierarchyRepository creates a new PostgreSQL hierarchy repository
func NewHierarchyRepository(pool *pgxpool.Pool) *HierarchyRepository {
	return &HierarchyRepository{txManager{pool: pool}}
}

const hierarchySelect = `
	SELECT h.id, h.parent_id, h.type, h.name, h.account_id,
	       a.name, a.currency,
	       CASE WHEN h.account_id IS NOT NULL THEN COALESCE(b.balance, 0) END
	FROM account_hierarchies h
	LEFT JOIN accounts a ON a.id = h.account_id
	LEFT JOIN (
		SELECT e.account_id, SUM(` + signedMagnitude + `)::BIGINT AS balance
		FROM entries e
		GROUP BY e.account_id
	) b ON b.account_id = h.account_id
`

// ListRows returns every stored node in name order
func (r *HierarchyRepository) ListRows(ctx context.Context) ([]hierarchy.StorageRow, error) {
	rows, err := r.q(ctx).Query(ctx, hierarchySelect+` ORDER BY COALESCE(h.name, a.name), h.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hierarchy: %w", err)
	}
	defer rows.Close()

	var out []hierarchy.StorageRow
	for rows.Next() {
		row, err := scanHierarchyRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hierarchy row: %w", err)
		}
		out = append(out, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hierarchy: %w", err)
	}
	return out, nil
}

// GetRow returns a single stored node
func (r *HierarchyRepository) GetRow(ctx context.Context, id int64) (*hierarchy.StorageRow, error) {
	row, err := scanHierarchyRow(r.q(ctx).QueryRow(ctx, hierarchySelect+` WHERE h.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hierarchy.ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to get hierarchy node: %w", err)
	}
	return row, nil
}

// InsertGroup stores a named group
func (r *HierarchyRepository) InsertGroup(ctx context.Context, accountType account.AccountType, parentID int64, name string) (int64, error) {
	query := `
		INSERT INTO account_hierarchies (parent_id, type, name)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.q(ctx).QueryRow(ctx, query, parentID, int16(accountType), name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert group: %w", err)
	}
	return id, nil
}

// InsertLeaf stores the node for an account
func (r *HierarchyRepository) InsertLeaf(ctx context.Context, acc *account.Account, parentID int64) (int64, error) {
	query := `
		INSERT INTO account_hierarchies (parent_id, type, account_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.q(ctx).QueryRow(ctx, query, parentID, int16(acc.Type), acc.ID).Scan(&id)
	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolation):
			return 0, fmt.Errorf("%w: account %d", hierarchy.ErrAccountPlaced, acc.ID)
		case isPgError(err, pgForeignKeyViolation):
			return 0, account.ErrAccountNotFound
		}
		return 0, fmt.Errorf("failed to insert leaf: %w", err)
	}
	return id, nil
}

// CountChildren counts the nodes whose parent is id
func (r *HierarchyRepository) CountChildren(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM account_hierarchies WHERE parent_id = $1 AND id <> parent_id`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return n, nil
}

// DeleteNode removes a node
func (r *HierarchyRepository) DeleteNode(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM account_hierarchies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete hierarchy node: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hierarchy.ErrNodeNotFound
	}
	return nil
}

func scanHierarchyRow(row pgx.Row) (*hierarchy.StorageRow, error) {
	var (
		r       hierarchy.StorageRow
		accType int16
	)
	if err := row.Scan(&r.ID, &r.ParentID, &accType, &r.Name, &r.AccountID,
		&r.AccountName, &r.Currency, &r.Balance); err != nil {
		return nil, err
	}
	r.Type = account.AccountType(accType)
	r.IsLeaf = r.AccountID != nil
	return &r, nil
}
