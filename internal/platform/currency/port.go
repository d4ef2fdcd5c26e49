package currency

import "context"

// Repository defines the interface for currency master data
type Repository interface {
	List(ctx context.Context) ([]*Currency, error)
	// GetByCode returns ErrCurrencyNotFound when the code is unknown
	GetByCode(ctx context.Context, code string) (*Currency, error)
	Upsert(ctx context.Context, c *Currency) error
}

// Cache holds master data between reads. Misses are reported with ok=false
// and a nil error.
type Cache interface {
	Get(ctx context.Context, code string) (*Currency, bool, error)
	Set(ctx context.Context, c *Currency) error
	GetAll(ctx context.Context) ([]*Currency, bool, error)
	SetAll(ctx context.Context, currencies []*Currency) error
	Clear(ctx context.Context) error
}
