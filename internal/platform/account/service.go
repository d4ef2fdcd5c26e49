package account

import (
	"context"
	"fmt"

	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

// Service provides business logic for the account registry
type Service struct {
	repo       Repository
	currencies CurrencyChecker
	logger     *logger.Logger
}

// NewService creates a new account service
func NewService(repo Repository, currencies CurrencyChecker, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		currencies: currencies,
		logger:     log.WithComponent("account"),
	}
}

// Create validates and stores a new account
func (s *Service) Create(ctx context.Context, accountType AccountType, name, currency string) (*Account, error) {
	acc := &Account{Type: accountType, Name: name, Currency: currency}
	if err := acc.ValidateCreate(); err != nil {
		return nil, err
	}

	known, err := s.currencies.Exists(ctx, acc.Currency)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to look up currency")
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCurrency, acc.Currency)
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, apperrors.AsStorage(err, "failed to create account")
	}

	s.logger.WithContext(ctx).Info("account created",
		"account_id", acc.ID, "type", acc.Type.String(), "currency", acc.Currency)
	return acc, nil
}

// Get retrieves an account by ID
func (s *Service) Get(ctx context.Context, id int64) (*Account, error) {
	if id <= 0 {
		return nil, ErrInvalidAccountID
	}
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to get account")
	}
	return acc, nil
}

// GetPair loads the two sides of a transfer in one round trip
func (s *Service) GetPair(ctx context.Context, fromID, toID int64) (from, to *Account, err error) {
	accounts, err := s.repo.GetByIDs(ctx, []int64{fromID, toID})
	if err != nil {
		return nil, nil, apperrors.AsStorage(err, "failed to get accounts")
	}
	for _, acc := range accounts {
		switch acc.ID {
		case fromID:
			from = acc
		case toID:
			to = acc
		}
	}
	if from == nil {
		return nil, nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, fromID)
	}
	if to == nil {
		return nil, nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, toID)
	}
	return from, to, nil
}

// GetByIDs retrieves several accounts, silently skipping unknown ids
func (s *Service) GetByIDs(ctx context.Context, ids []int64) ([]*Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	accounts, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to get accounts")
	}
	return accounts, nil
}

// List retrieves all accounts
func (s *Service) List(ctx context.Context) ([]*Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to list accounts")
	}
	return accounts, nil
}

// ListByType retrieves all accounts of one type together with their balances
func (s *Service) ListByType(ctx context.Context, accountType AccountType) ([]*DetailedAccount, error) {
	if !accountType.IsValid() {
		return nil, ErrInvalidAccountType
	}
	accounts, err := s.repo.ListByType(ctx, accountType)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to list accounts by type")
	}
	return accounts, nil
}

// Delete removes an account that no entry references
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidAccountID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.AsStorage(err, "failed to delete account")
	}
	s.logger.WithContext(ctx).Info("account deleted", "account_id", id)
	return nil
}
