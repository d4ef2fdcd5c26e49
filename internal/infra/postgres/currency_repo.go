package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homebooks/ledger/internal/platform/currency"
)

// CurrencyRepository implements currency.Repository using PostgreSQL
type CurrencyRepository struct {
	txManager
}

// NewCurrencyRepository creates a new PostgreSQL currency repository
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{txManager{pool: pool}}
}

// List returns all currencies ordered by code
func (r *CurrencyRepository) List(ctx context.Context) ([]*currency.Currency, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT code, numeric_code, minor_unit, name FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var out []*currency.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return out, nil
}

// GetByCode returns one currency
func (r *CurrencyRepository) GetByCode(ctx context.Context, code string) (*currency.Currency, error) {
	c, err := scanCurrency(r.q(ctx).QueryRow(ctx,
		`SELECT code, numeric_code, minor_unit, name FROM currencies WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, currency.ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return c, nil
}

// Upsert inserts a currency or refreshes an existing one
func (r *CurrencyRepository) Upsert(ctx context.Context, c *currency.Currency) error {
	query := `
		INSERT INTO currencies (code, numeric_code, minor_unit, name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			numeric_code = EXCLUDED.numeric_code,
			minor_unit = EXCLUDED.minor_unit,
			name = EXCLUDED.name
	`

	if _, err := r.q(ctx).Exec(ctx, query, c.Code, c.NumericCode, int16(c.MinorUnit), c.Name); err != nil {
		return fmt.Errorf("failed to upsert currency: %w", err)
	}
	return nil
}

func scanCurrency(row pgx.Row) (*currency.Currency, error) {
	var (
		c         currency.Currency
		minorUnit int16
	)
	if err := row.Scan(&c.Code, &c.NumericCode, &minorUnit, &c.Name); err != nil {
		return nil, err
	}
	c.MinorUnit = int(minorUnit)
	return &c, nil
}
