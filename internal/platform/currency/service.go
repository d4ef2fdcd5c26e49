package currency

import (
	"context"
	"fmt"

	gomoney "github.com/Rhymond/go-money"

	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

// Service reads and seeds currency master data. Reads go through the cache
// when one is configured; cache failures fall back to the repository.
type Service struct {
	repo    Repository
	cache   Cache
	breaker *CircuitBreaker
	logger  *logger.Logger
}

// NewService creates a new currency service. cache may be nil.
func NewService(repo Repository, cache Cache, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		breaker: NewCircuitBreaker(DefaultBreakerFailures, DefaultBreakerCooldown),
		logger:  log.WithComponent("currency"),
	}
}

// WithBreaker replaces the cache circuit breaker
func (s *Service) WithBreaker(cb *CircuitBreaker) *Service {
	s.breaker = cb
	return s
}

func (s *Service) useCache() bool {
	return s.cache != nil && s.breaker.CanAttempt()
}

// observe records the outcome of a cache call
func (s *Service) observe(ctx context.Context, op string, err error, attrs ...any) {
	if err == nil {
		s.breaker.RecordSuccess()
		return
	}
	log := s.logger.WithContext(ctx)
	log.Warn("currency cache "+op+" failed", append(attrs, "error", err)...)
	if s.breaker.RecordFailure() {
		log.Error("currency cache disabled after repeated failures", "cooldown", s.breaker.cooldown)
	}
}

// List returns every known currency ordered by code
func (s *Service) List(ctx context.Context) ([]*Currency, error) {
	if s.useCache() {
		cached, ok, err := s.cache.GetAll(ctx)
		s.observe(ctx, "read", err)
		if err == nil && ok {
			return cached, nil
		}
	}

	currencies, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to list currencies")
	}

	if s.useCache() {
		s.observe(ctx, "write", s.cache.SetAll(ctx, currencies))
	}
	return currencies, nil
}

// Get returns one currency by code
func (s *Service) Get(ctx context.Context, code string) (*Currency, error) {
	code = NormalizeCode(code)
	if len(code) != 3 {
		return nil, ErrInvalidCurrencyCode
	}

	if s.useCache() {
		cached, ok, err := s.cache.Get(ctx, code)
		s.observe(ctx, "read", err, "code", code)
		if err == nil && ok {
			return cached, nil
		}
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to get currency")
	}

	if s.useCache() {
		s.observe(ctx, "write", s.cache.Set(ctx, c), "code", code)
	}
	return c, nil
}

// Exists reports whether the code is present in master data
func (s *Service) Exists(ctx context.Context, code string) (bool, error) {
	_, err := s.Get(ctx, code)
	if err == nil {
		return true, nil
	}
	if apperrors.HasCode(err, apperrors.ErrCodeNotFound) || apperrors.HasCode(err, apperrors.ErrCodeValidation) {
		return false, nil
	}
	return false, err
}

// Seed validates and upserts currencies in order, calling progress after
// each one is written. It stops at the first failure and returns how many
// were written.
func (s *Service) Seed(ctx context.Context, currencies []*Currency, progress func(*Currency)) (int, error) {
	for _, c := range currencies {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("currency %q: %w", c.Code, err)
		}
		if known := gomoney.GetCurrency(c.Code); known != nil && known.Fraction != c.MinorUnit {
			s.logger.WithContext(ctx).Warn("minor unit differs from ISO default",
				"code", c.Code, "minor_unit", c.MinorUnit, "iso_minor_unit", known.Fraction)
		}
	}

	written := 0
	for _, c := range currencies {
		if err := s.repo.Upsert(ctx, c); err != nil {
			return written, apperrors.AsStorage(err, fmt.Sprintf("failed to seed currency %s", c.Code))
		}
		written++
		if progress != nil {
			progress(c)
		}
	}

	if s.cache != nil {
		s.observe(ctx, "clear", s.cache.Clear(ctx))
	}

	s.logger.WithContext(ctx).Info("currencies seeded", "count", written)
	return written, nil
}
