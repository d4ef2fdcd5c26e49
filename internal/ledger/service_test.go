package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

const (
	gbpCurrent int64 = iota + 1
	gbpSavings
	gbpGroceries
	usdCash
)

func testAccounts() memAccounts {
	return memAccounts{
		gbpCurrent:   {ID: gbpCurrent, Type: account.Assets, Name: "Current", Currency: "GBP"},
		gbpSavings:   {ID: gbpSavings, Type: account.Assets, Name: "Savings", Currency: "GBP"},
		gbpGroceries: {ID: gbpGroceries, Type: account.Expenses, Name: "Groceries", Currency: "GBP"},
		usdCash:      {ID: usdCash, Type: account.Assets, Name: "Cash", Currency: "USD"},
	}
}

func setupService(t *testing.T) (*ledger.Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return ledger.NewService(repo, testAccounts(), logger.Discard()), repo
}

func transfer(from, to, magnitude int64, name string) ledger.TransferRequest {
	return ledger.TransferRequest{FromAccountID: from, ToAccountID: to, Magnitude: magnitude, Name: name}
}

func assertIntegrity(t *testing.T, svc *ledger.Service) {
	t.Helper()
	report, err := svc.CheckIntegrity(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK(), "ledger should be balanced: %+v", report)
}

func TestCreateTransaction_WritesMatchedPair(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	tx, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpGroceries, 2550, "Weekly shop"))
	require.NoError(t, err)
	require.NotZero(t, tx.ID)

	got, err := svc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly shop", got.Name)
	require.Len(t, got.Entries, 2)

	debit, credit := got.Debit(), got.Credit()
	require.NotNil(t, debit)
	require.NotNil(t, credit)
	assert.Equal(t, gbpGroceries, debit.AccountID)
	assert.Equal(t, gbpCurrent, credit.AccountID)
	assert.Equal(t, int64(2550), debit.Magnitude)
	assert.Equal(t, int64(2550), credit.Magnitude)
	assert.Less(t, debit.ID, credit.ID, "debit is written before credit")
}

func TestCreateTransaction_CurrencyGate(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	_, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, usdCash, 100, "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, account.ErrCurrencyMismatch)
	assert.Equal(t, apperrors.ErrCodeIncompatibleAccounts, apperrors.CodeOf(err))
	assert.Empty(t, repo.txs, "nothing may be written for a rejected transfer")

	_, err = svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpSavings, 100, "x"))
	require.NoError(t, err)

	from, err := svc.CurrentBalance(ctx, gbpCurrent)
	require.NoError(t, err)
	to, err := svc.CurrentBalance(ctx, gbpSavings)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), from)
	assert.Equal(t, int64(100), to)
}

func TestCreateTransaction_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      ledger.TransferRequest
		wantErr  error
		wantCode string
	}{
		{"self transfer", transfer(gbpCurrent, gbpCurrent, 100, "x"), account.ErrSameAccount, apperrors.ErrCodeIncompatibleAccounts},
		{"zero magnitude", transfer(gbpCurrent, gbpSavings, 0, "x"), ledger.ErrNonPositiveMagnitude, apperrors.ErrCodeValidation},
		{"negative magnitude", transfer(gbpCurrent, gbpSavings, -5, "x"), ledger.ErrNonPositiveMagnitude, apperrors.ErrCodeValidation},
		{"blank name", transfer(gbpCurrent, gbpSavings, 5, "   "), ledger.ErrMissingTransactionName, apperrors.ErrCodeValidation},
		{"missing account", transfer(gbpCurrent, 99, 5, "x"), account.ErrAccountNotFound, apperrors.ErrCodeNotFound},
		{"zero account id", transfer(0, gbpSavings, 5, "x"), ledger.ErrInvalidAccountReference, apperrors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setupService(t)
			_, err := svc.CreateTransaction(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			assert.Empty(t, repo.txs)
			assert.Empty(t, repo.entries)
		})
	}
}

func TestCreateTransaction_FailureBetweenEntriesLeavesNothing(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	storageErr := errors.New("connection reset by peer")
	repo.failInsertEntry = func(e *ledger.Entry) error {
		if e.Kind == ledger.Credit {
			return storageErr
		}
		return nil
	}

	_, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpSavings, 100, "doomed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.Equal(t, apperrors.ErrCodeStorageFailure, apperrors.CodeOf(err))
	assert.Equal(t, 1, repo.rollbacks)

	failedID := repo.lastInsertedTx
	require.NotZero(t, failedID)

	entries, err := repo.GetEntriesByTransaction(ctx, failedID)
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed transfer must leave zero entries, not one")

	_, err = svc.GetTransaction(ctx, failedID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
	assertIntegrity(t, svc)
}

func TestCreateTransaction_CommitFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)
	repo.failCommit = errors.New("serialization failure")

	_, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpSavings, 100, "x"))
	assert.Equal(t, apperrors.ErrCodeStorageFailure, apperrors.CodeOf(err))
	assert.Empty(t, repo.txs)
	assert.Empty(t, repo.entries)
}

func TestCreateTransaction_Backdated(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	when := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	req := transfer(gbpCurrent, gbpGroceries, 10, "old receipt")
	req.OccurredAt = when

	tx, err := svc.CreateTransaction(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, when, tx.OccurredAt)
}

func TestInvariantHoldsAcrossMutations(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	var ids []int64
	for i, amount := range []int64{100, 2500, 1, 999999, 42} {
		from, to := gbpCurrent, gbpGroceries
		if i%2 == 1 {
			from, to = gbpSavings, gbpCurrent
		}
		tx, err := svc.CreateTransaction(ctx, transfer(from, to, amount, "step"))
		require.NoError(t, err)
		ids = append(ids, tx.ID)
		assertIntegrity(t, svc)
	}

	_, err := svc.UpdateTransaction(ctx, ledger.UpdateRequest{ID: ids[1], Name: "renamed", Magnitude: 7})
	require.NoError(t, err)
	assertIntegrity(t, svc)

	require.NoError(t, svc.DeleteTransaction(ctx, ids[3]))
	assertIntegrity(t, svc)

	require.NoError(t, svc.DeleteTransaction(ctx, ids[0]))
	assertIntegrity(t, svc)

	balances, err := svc.AccountBalancesFor(ctx, []int64{gbpCurrent, gbpSavings, gbpGroceries, usdCash})
	require.NoError(t, err)
	var sum int64
	for _, b := range balances {
		sum += b
	}
	assert.Zero(t, sum, "balances across all accounts net to zero")
	assert.Equal(t, int64(0), balances[usdCash])
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	tx, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpGroceries, 100, "shop"))
	require.NoError(t, err)

	updated, err := svc.UpdateTransaction(ctx, ledger.UpdateRequest{ID: tx.ID, Name: " corner shop ", Magnitude: 250})
	require.NoError(t, err)
	assert.Equal(t, "corner shop", updated.Name)
	assert.Equal(t, int64(250), updated.Debit().Magnitude)
	assert.Equal(t, int64(250), updated.Credit().Magnitude)
	assert.Equal(t, gbpGroceries, updated.Debit().AccountID, "accounts are preserved")
	assert.Equal(t, gbpCurrent, updated.Credit().AccountID)

	_, err = svc.UpdateTransaction(ctx, ledger.UpdateRequest{ID: 999, Name: "x", Magnitude: 1})
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	_, err = svc.UpdateTransaction(ctx, ledger.UpdateRequest{ID: tx.ID, Name: "x", Magnitude: 0})
	assert.ErrorIs(t, err, ledger.ErrNonPositiveMagnitude)
}

func TestUpdateTransaction_RefusesCorruptPair(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	tx, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpGroceries, 100, "shop"))
	require.NoError(t, err)
	repo.corrupt(ledger.Entry{TransactionID: tx.ID, AccountID: gbpSavings, Magnitude: 5, Kind: ledger.Debit})

	_, err = svc.UpdateTransaction(ctx, ledger.UpdateRequest{ID: tx.ID, Name: "renamed", Magnitude: 300})
	assert.ErrorIs(t, err, ledger.ErrUnpairedEntries)

	stored, err := repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "shop", stored.Name, "the update was rolled back")
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	tx, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpGroceries, 100, "shop"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
	assert.Empty(t, repo.entries)

	err = svc.DeleteTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, 0), ledger.ErrInvalidTransactionID)
}

func TestGetTransaction_DetectsOddEntryCount(t *testing.T) {
	ctx := context.Background()
	svc, repo := setupService(t)

	tx, err := svc.CreateTransaction(ctx, transfer(gbpCurrent, gbpGroceries, 100, "shop"))
	require.NoError(t, err)
	repo.corrupt(ledger.Entry{TransactionID: tx.ID, AccountID: gbpSavings, Magnitude: 100, Kind: ledger.Credit})

	_, err = svc.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, ledger.ErrUnpairedEntries)
	assert.Equal(t, apperrors.ErrCodeIntegrityViolation, apperrors.CodeOf(err))

	report, err := svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.False(t, report.Balanced)
	assert.Equal(t, []int64{tx.ID}, report.UnpairedTransactions)
	assert.Equal(t, int64(100), report.Debits)
	assert.Equal(t, int64(200), report.Credits)
}

func TestCheckIntegrity_EmptyLedger(t *testing.T) {
	svc, _ := setupService(t)
	report, err := svc.CheckIntegrity(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Zero(t, report.Entries)
	assert.NotNil(t, report.UnpairedTransactions)
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		req := transfer(gbpCurrent, gbpGroceries, int64(i+1), "tx")
		req.OccurredAt = base.Add(time.Duration(i) * 24 * time.Hour)
		_, err := svc.CreateTransaction(ctx, req)
		require.NoError(t, err)
	}

	page, err := svc.ListTransactions(ctx, ledger.TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, page, ledger.DefaultListLimit)
	assert.True(t, page[0].OccurredAt.After(page[1].OccurredAt), "newest first")

	march, err := svc.ListTransactionsByMonth(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Len(t, march, 31)

	april, err := svc.ListTransactionsByMonth(ctx, 2024, 4)
	require.NoError(t, err)
	assert.Len(t, april, 9)

	_, err = svc.ListTransactionsByMonth(ctx, 2024, 13)
	assert.ErrorIs(t, err, ledger.ErrInvalidMonth)
	_, err = svc.ListTransactionsByMonth(ctx, 1969, 1)
	assert.ErrorIs(t, err, ledger.ErrInvalidYear)

	from, to := base.Add(48*time.Hour), base
	_, err = svc.ListTransactions(ctx, ledger.TransactionFilters{From: &from, To: &to})
	assert.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}

func TestAccountBalancesBetween(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{jan, feb} {
		req := transfer(gbpCurrent, gbpGroceries, 1000, "shop")
		req.OccurredAt = at
		_, err := svc.CreateTransaction(ctx, req)
		require.NoError(t, err)
	}

	from, to, err := ledger.MonthRange(2024, 1)
	require.NoError(t, err)

	got, err := svc.AccountBalancesBetween(ctx, []int64{gbpGroceries, gbpCurrent, gbpSavings}, from, to)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{gbpGroceries: 1000, gbpCurrent: -1000, gbpSavings: 0}, got)

	all, err := svc.AccountBalancesFor(ctx, []int64{gbpGroceries})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), all[gbpGroceries])

	_, err = svc.AccountBalancesBetween(ctx, []int64{gbpGroceries}, to, from)
	assert.ErrorIs(t, err, ledger.ErrInvalidDateRange)
}
