package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/homebooks/ledger/internal/platform/account"
	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

// Service manages budget periods and their entries
type Service struct {
	repo     Repository
	balances BalanceReader
	accounts AccountReader
	logger   *logger.Logger
}

// NewService creates a new budget service
func NewService(repo Repository, balances BalanceReader, accounts AccountReader, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		balances: balances,
		accounts: accounts,
		logger:   log.WithComponent("budget"),
	}
}

// Create stores a new budget after checking its period against every
// existing one. The check and the insert share one locked unit of work.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Budget, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := &Budget{
		Name:   req.Name,
		Open:   req.Open.UTC(),
		Close:  req.Close.UTC(),
		Target: uuid.New(),
	}

	err := s.withTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockBudgets(txCtx); err != nil {
			return err
		}
		existing, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if other.Overlaps(b.Open, b.Close) {
				return fmt.Errorf("%w: %q (%s to %s)", ErrPeriodOverlap, other.Name,
					other.Open.Format("2006-01-02"), other.Close.Format("2006-01-02"))
			}
		}
		return s.repo.Create(txCtx, b)
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodePeriodConflict) {
			s.logger.WithContext(ctx).Warn("budget period rejected", "name", b.Name, "error", err)
		}
		return nil, err
	}

	s.logger.WithContext(ctx).Info("budget created", "budget_id", b.ID, "open", b.Open, "close", b.Close)
	return b, nil
}

// Get retrieves a budget by ID
func (s *Service) Get(ctx context.Context, id int64) (*Budget, error) {
	if id <= 0 {
		return nil, ErrInvalidBudgetID
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to get budget")
	}
	return b, nil
}

// List retrieves all budgets ordered by open
func (s *Service) List(ctx context.Context) ([]*Budget, error) {
	budgets, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to list budgets")
	}
	return budgets, nil
}

// Delete removes a budget together with its entries
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidBudgetID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.AsStorage(err, "failed to delete budget")
	}
	s.logger.WithContext(ctx).Info("budget deleted", "budget_id", id)
	return nil
}

// SetEntry attaches an account to a budget, replacing any previous target
func (s *Service) SetEntry(ctx context.Context, budgetID, accountID, target int64) (*Entry, error) {
	if _, err := s.Get(ctx, budgetID); err != nil {
		return nil, err
	}
	if accountID <= 0 {
		return nil, ErrInvalidAccountID
	}
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}

	e := &Entry{BudgetID: budgetID, AccountID: accountID, Balance: target}
	if err := s.repo.UpsertEntry(ctx, e); err != nil {
		return nil, apperrors.AsStorage(err, "failed to set budget entry")
	}
	return e, nil
}

// RemoveEntry detaches an account from a budget
func (s *Service) RemoveEntry(ctx context.Context, budgetID, accountID int64) error {
	if budgetID <= 0 {
		return ErrInvalidBudgetID
	}
	if accountID <= 0 {
		return ErrInvalidAccountID
	}
	if err := s.repo.DeleteEntry(ctx, budgetID, accountID); err != nil {
		return apperrors.AsStorage(err, "failed to remove budget entry")
	}
	return nil
}

// Entries lists the accounts attached to a budget
func (s *Service) Entries(ctx context.Context, budgetID int64) ([]*Entry, error) {
	if budgetID <= 0 {
		return nil, ErrInvalidBudgetID
	}
	entries, err := s.repo.ListEntries(ctx, budgetID)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to list budget entries")
	}
	return entries, nil
}

// Report compares each entry's target with the ledger movement of its
// account between open and the end of the close day
func (s *Service) Report(ctx context.Context, budgetID int64) (*Report, error) {
	var (
		b       *Budget
		entries []*Entry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = s.Get(gctx, budgetID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.Entries(gctx, budgetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Budget: b, Lines: make([]*ReportLine, 0, len(entries))}
	if len(entries) == 0 {
		return report, nil
	}

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.AccountID
	}

	var (
		actuals  map[int64]int64
		accounts []*account.Account
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actuals, err = s.balances.AccountBalancesBetween(gctx, ids, b.Open, b.End())
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.GetByIDs(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int64]*account.Account, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc
	}

	for _, e := range entries {
		line := &ReportLine{
			AccountID: e.AccountID,
			Target:    e.Balance,
			Actual:    actuals[e.AccountID],
		}
		line.Remaining = line.Target - line.Actual
		if acc, ok := byID[e.AccountID]; ok {
			line.AccountName = acc.Name
			line.Currency = acc.Currency
		}
		report.Lines = append(report.Lines, line)
	}
	return report, nil
}

// withTx runs fn in one database transaction, rolling back on any failure
func (s *Service) withTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	txCtx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return apperrors.StorageFailure("failed to begin transaction", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = s.repo.RollbackTx(txCtx)
		}
	}()

	if err := fn(txCtx); err != nil {
		return apperrors.AsStorage(err, "budget write failed")
	}
	if err := s.repo.CommitTx(txCtx); err != nil {
		return apperrors.StorageFailure("failed to commit transaction", err)
	}
	committed = true
	return nil
}
