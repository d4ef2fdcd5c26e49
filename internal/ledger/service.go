package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/homebooks/ledger/internal/platform/account"
	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

// Listing limits
const (
	DefaultListLimit = 32
	MaxListLimit     = 500
)

// Service orchestrates the ledger operations.
//
// Every write goes through a committer so that a transaction row and its two
// entries are stored, changed or removed as one unit.
type Service struct {
	repo      Repository
	accounts  AccountProvider
	committer *transactionCommitter
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a new ledger service
func NewService(repo Repository, accounts AccountProvider, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		accounts:  accounts,
		committer: newTransactionCommitter(repo),
		logger:    log.WithComponent("ledger"),
		now:       time.Now,
	}
}

// CreateTransaction moves req.Magnitude from one account to another.
//
// Both accounts must differ and share a currency. The transaction row, the
// debit on the destination and the credit on the source are written in that
// order inside one database transaction.
func (s *Service) CreateTransaction(ctx context.Context, req TransferRequest) (*Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, account.ErrSameAccount
	}

	from, to, err := s.accounts.GetPair(ctx, req.FromAccountID, req.ToAccountID)
	if err != nil {
		return nil, err
	}
	if err := from.CompatibleWith(to); err != nil {
		return nil, err
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	tx := &Transaction{
		OccurredAt: occurredAt.UTC(),
		Name:       req.Name,
	}

	err = s.committer.commit(ctx, func(txCtx context.Context) error {
		if err := s.repo.InsertTransaction(txCtx, tx); err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		debit := &Entry{TransactionID: tx.ID, AccountID: to.ID, AccountName: to.Name, Magnitude: req.Magnitude, Kind: Debit}
		if err := s.repo.InsertEntry(txCtx, debit); err != nil {
			return fmt.Errorf("failed to insert debit entry: %w", err)
		}

		credit := &Entry{TransactionID: tx.ID, AccountID: from.ID, AccountName: from.Name, Magnitude: req.Magnitude, Kind: Credit}
		if err := s.repo.InsertEntry(txCtx, credit); err != nil {
			return fmt.Errorf("failed to insert credit entry: %w", err)
		}

		tx.Entries = []*Entry{debit, credit}
		return nil
	})
	if err != nil {
		s.logger.WithContext(ctx).Error("transaction not recorded",
			"from_account", from.ID, "to_account", to.ID, "error", err)
		return nil, err
	}

	s.logger.WithContext(ctx).Info("transaction recorded",
		"transaction_id", tx.ID, "from_account", from.ID, "to_account", to.ID, "magnitude", req.Magnitude)
	return tx, nil
}

// UpdateTransaction rewrites the name and sets both entries to the new magnitude.
// Entry kinds and accounts are left untouched.
func (s *Service) UpdateTransaction(ctx context.Context, req UpdateRequest) (*Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.committer.commit(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateTransactionName(txCtx, req.ID, req.Name); err != nil {
			return err
		}

		n, err := s.repo.UpdateEntryMagnitudes(txCtx, req.ID, req.Magnitude)
		if err != nil {
			return fmt.Errorf("failed to update entries: %w", err)
		}
		if n != 2 {
			s.logger.WithContext(ctx).Error("integrity violation on update",
				"transaction_id", req.ID, "entries", n)
			return fmt.Errorf("%w: transaction %d has %d entries", ErrUnpairedEntries, req.ID, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("transaction updated", "transaction_id", req.ID, "magnitude", req.Magnitude)
	return s.GetTransaction(ctx, req.ID)
}

// DeleteTransaction removes a transaction; its entries go with it
func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidTransactionID
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return apperrors.AsStorage(err, "failed to delete transaction")
	}
	s.logger.WithContext(ctx).Info("transaction deleted", "transaction_id", id)
	return nil
}

// GetTransaction retrieves a transaction with both of its entries
func (s *Service) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	if id <= 0 {
		return nil, ErrInvalidTransactionID
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to get transaction")
	}

	tx.Entries, err = s.repo.GetEntriesByTransaction(ctx, id)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to get entries")
	}

	if err := tx.VerifyPairing(); err != nil {
		s.logger.WithContext(ctx).Error("integrity violation on read", "transaction_id", id, "error", err)
		return nil, err
	}
	return tx, nil
}

// ListTransactions lists transactions newest first
func (s *Service) ListTransactions(ctx context.Context, filters TransactionFilters) ([]*Transaction, error) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}
	if filters.Limit > MaxListLimit {
		filters.Limit = MaxListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	if filters.From != nil && filters.To != nil && filters.From.After(*filters.To) {
		return nil, ErrInvalidDateRange
	}

	txs, err := s.repo.ListTransactions(ctx, filters)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to list transactions")
	}
	return txs, nil
}

// ListTransactionsByMonth lists the transactions that occurred in one calendar month (UTC)
func (s *Service) ListTransactionsByMonth(ctx context.Context, year, month int) ([]*Transaction, error) {
	from, to, err := MonthRange(year, month)
	if err != nil {
		return nil, err
	}
	return s.ListTransactions(ctx, TransactionFilters{From: &from, To: &to, Limit: MaxListLimit})
}

// MonthRange returns [first instant of the month, first instant of the next month)
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	if year < 1970 {
		return time.Time{}, time.Time{}, ErrInvalidYear
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

// CurrentBalance derives an account's balance from its entries
func (s *Service) CurrentBalance(ctx context.Context, accountID int64) (int64, error) {
	balance, err := s.repo.AccountBalance(ctx, accountID)
	if err != nil {
		return 0, apperrors.AsStorage(err, "failed to compute balance")
	}
	return balance, nil
}

// AccountBalancesFor returns the all-time balance of each account. Accounts
// without entries map to zero.
func (s *Service) AccountBalancesFor(ctx context.Context, accountIDs []int64) (map[int64]int64, error) {
	if len(accountIDs) == 0 {
		return map[int64]int64{}, nil
	}
	balances, err := s.repo.AccountBalances(ctx, accountIDs)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to compute balances")
	}
	return fillZero(balances, accountIDs), nil
}

// AccountBalancesBetween is AccountBalancesFor restricted to transactions with
// from <= occurred_at < to
func (s *Service) AccountBalancesBetween(ctx context.Context, accountIDs []int64, from, to time.Time) (map[int64]int64, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}
	if len(accountIDs) == 0 {
		return map[int64]int64{}, nil
	}
	balances, err := s.repo.AccountBalancesBetween(ctx, accountIDs, from, to)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to compute balances")
	}
	return fillZero(balances, accountIDs), nil
}

func fillZero(balances map[int64]int64, ids []int64) map[int64]int64 {
	if balances == nil {
		balances = make(map[int64]int64, len(ids))
	}
	for _, id := range ids {
		if _, ok := balances[id]; !ok {
			balances[id] = 0
		}
	}
	return balances
}

// CheckIntegrity recomputes the global debit and credit totals and looks for
// transactions that do not have exactly two entries
func (s *Service) CheckIntegrity(ctx context.Context) (*IntegrityReport, error) {
	totals, err := s.repo.EntryTotals(ctx)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to sum entries")
	}

	unpaired, err := s.repo.UnpairedTransactions(ctx)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to find unpaired transactions")
	}
	if unpaired == nil {
		unpaired = []int64{}
	}

	report := &IntegrityReport{
		Balanced:             totals.Balanced(),
		Totals:               *totals,
		UnpairedTransactions: unpaired,
		CheckedAt:            s.now().UTC(),
	}

	log := s.logger.WithContext(ctx)
	if report.OK() {
		log.Debug("ledger integrity ok", "debits", totals.Debits, "credits", totals.Credits)
	} else {
		log.Error("ledger integrity violated",
			"debits", totals.Debits, "credits", totals.Credits, "unpaired", len(unpaired))
	}
	return report, nil
}
