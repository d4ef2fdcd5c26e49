package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homebooks/ledger/internal/platform/account"
)

// signedMagnitude is the SQL expression for an entry's contribution to its
// account balance
const signedMagnitude = `CASE WHEN e.kind = 'DEBIT' THEN e.magnitude ELSE -e.magnitude END`

// AccountRepository implements account.Repository using PostgreSQL
type AccountRepository struct {
	txManager
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{txManager{pool: pool}}
}

// Create inserts an account and sets its ID
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (type, name, currency)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.q(ctx).QueryRow(ctx, query, int16(acc.Type), acc.Name, acc.Currency).Scan(&acc.ID)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: %s", account.ErrUnknownCurrency, acc.Currency)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `SELECT id, type, name, currency FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByIDs retrieves the accounts that exist among ids
func (r *AccountRepository) GetByIDs(ctx context.Context, ids []int64) ([]*account.Account, error) {
	query := `SELECT id, type, name, currency FROM accounts WHERE id = ANY($1) ORDER BY id`

	rows, err := r.q(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return collectAccounts(rows)
}

// List retrieves all accounts ordered by id
func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT id, type, name, currency FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return collectAccounts(rows)
}

// ListByType retrieves the accounts of one type with their balances
func (r *AccountRepository) ListByType(ctx context.Context, accountType account.AccountType) ([]*account.DetailedAccount, error) {
	query := `
		SELECT a.id, a.type, a.name, a.currency,
		       COALESCE(SUM(` + signedMagnitude + `), 0)::BIGINT AS balance
		FROM accounts a
		LEFT JOIN entries e ON e.account_id = a.id
		WHERE a.type = $1
		GROUP BY a.id
		ORDER BY a.name, a.id
	`

	rows, err := r.q(ctx).Query(ctx, query, int16(accountType))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by type: %w", err)
	}
	defer rows.Close()

	var accounts []*account.DetailedAccount
	for rows.Next() {
		var (
			d       account.DetailedAccount
			accType int16
		)
		if err := rows.Scan(&d.ID, &accType, &d.Name, &d.Currency, &d.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		d.Type = account.AccountType(accType)
		accounts = append(accounts, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Delete removes an account. Entries referencing it block the delete.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("%w: id %d", account.ErrAccountInUse, id)
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		acc     account.Account
		accType int16
	)
	if err := row.Scan(&acc.ID, &accType, &acc.Name, &acc.Currency); err != nil {
		return nil, err
	}
	acc.Type = account.AccountType(accType)
	return &acc, nil
}

func collectAccounts(rows pgx.Rows) ([]*account.Account, error) {
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
