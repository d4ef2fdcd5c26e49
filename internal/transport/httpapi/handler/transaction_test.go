package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	apperrors "github.com/homebooks/ledger/internal/shared/errors"
)

func sampleTx() *ledger.Transaction {
	return &ledger.Transaction{
		ID:         11,
		OccurredAt: date("2024-03-02"),
		Name:       "Weekly shop",
		Entries: []*ledger.Entry{
			{ID: 21, TransactionID: 11, AccountID: 4, Magnitude: 1250, Kind: ledger.Debit},
			{ID: 22, TransactionID: 11, AccountID: 1, Magnitude: 1250, Kind: ledger.Credit},
		},
	}
}

func TestCreateTransaction_Magnitude(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewTransactionHandler(svc, new(MockAccountService))

	svc.On("CreateTransaction", mock.Anything, ledger.TransferRequest{
		FromAccountID: 1, ToAccountID: 4, Magnitude: 1250, Name: "Weekly shop",
	}).Return(sampleTx(), nil)

	rec := serve(t, http.MethodPost, "/transactions", "/transactions",
		`{"from_account_id":1,"to_account_id":4,"magnitude":1250,"name":"Weekly shop"}`, h.CreateTransaction)

	assert.Equal(t, http.StatusCreated, rec.Code)
	got := decodeBody[ledger.Transaction](t, rec)
	assert.Len(t, got.Entries, 2)
	svc.AssertExpectations(t)
}

func TestCreateTransaction_DecimalAmount(t *testing.T) {
	svc := new(MockLedgerService)
	accounts := new(MockAccountService)
	h := NewTransactionHandler(svc, accounts)

	accounts.On("Get", mock.Anything, int64(1)).Return(&account.Account{ID: 1, Currency: "GBP"}, nil)
	svc.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(req ledger.TransferRequest) bool {
		return req.Magnitude == 1250
	})).Return(sampleTx(), nil)

	rec := serve(t, http.MethodPost, "/transactions", "/transactions",
		`{"from_account_id":1,"to_account_id":4,"amount":"12.50","name":"Weekly shop"}`, h.CreateTransaction)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestCreateTransaction_Rejected(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "fractional magnitude",
			body:       `{"from_account_id":1,"to_account_id":4,"magnitude":12.5,"name":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeBadRequest,
		},
		{
			name:       "exponent magnitude",
			body:       `{"from_account_id":1,"to_account_id":4,"magnitude":1e3,"name":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeBadRequest,
		},
		{
			name:       "both amount forms",
			body:       `{"from_account_id":1,"to_account_id":4,"magnitude":100,"amount":"1.00","name":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeBadRequest,
		},
		{
			name:       "no amount",
			body:       `{"from_account_id":1,"to_account_id":4,"name":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockLedgerService)
			h := NewTransactionHandler(svc, new(MockAccountService))

			rec := serve(t, http.MethodPost, "/transactions", "/transactions", tt.body, h.CreateTransaction)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody[ErrorResponse](t, rec).Code)
			svc.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateTransaction_IncompatibleAccounts(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewTransactionHandler(svc, new(MockAccountService))
	svc.On("CreateTransaction", mock.Anything, mock.Anything).Return(nil, account.ErrCurrencyMismatch)

	rec := serve(t, http.MethodPost, "/transactions", "/transactions",
		`{"from_account_id":1,"to_account_id":5,"magnitude":100,"name":"x"}`, h.CreateTransaction)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, apperrors.ErrCodeIncompatibleAccounts, got.Code)
	assert.Equal(t, "accounts use different currencies", got.Error)
}

func TestUpdateTransaction_AmountUsesDebitAccountCurrency(t *testing.T) {
	svc := new(MockLedgerService)
	accounts := new(MockAccountService)
	h := NewTransactionHandler(svc, accounts)

	svc.On("GetTransaction", mock.Anything, int64(11)).Return(sampleTx(), nil)
	accounts.On("Get", mock.Anything, int64(4)).Return(&account.Account{ID: 4, Currency: "JPY"}, nil)
	svc.On("UpdateTransaction", mock.Anything, ledger.UpdateRequest{ID: 11, Name: "Shop", Magnitude: 900}).
		Return(sampleTx(), nil)

	rec := serve(t, http.MethodPut, "/transactions/{id}", "/transactions/11",
		`{"name":"Shop","amount":"900"}`, h.UpdateTransaction)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewTransactionHandler(svc, new(MockAccountService))
	svc.On("DeleteTransaction", mock.Anything, int64(99)).Return(ledger.ErrTransactionNotFound)

	rec := serve(t, http.MethodDelete, "/transactions/{id}", "/transactions/99", "", h.DeleteTransaction)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTransactions_Month(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewTransactionHandler(svc, new(MockAccountService))
	svc.On("ListTransactionsByMonth", mock.Anything, 2024, 3).Return([]*ledger.Transaction{sampleTx()}, nil)

	rec := serve(t, http.MethodGet, "/transactions", "/transactions?year=2024&month=3", "", h.GetTransactions)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[TransactionsListResponse](t, rec).Transactions, 1)
}

func TestGetTransactions_Filters(t *testing.T) {
	svc := new(MockLedgerService)
	h := NewTransactionHandler(svc, new(MockAccountService))
	svc.On("ListTransactions", mock.Anything, mock.MatchedBy(func(f ledger.TransactionFilters) bool {
		return f.AccountID != nil && *f.AccountID == 4 &&
			f.From != nil && f.From.Equal(date("2024-03-01")) &&
			f.To == nil &&
			f.Limit == 10 && f.Offset == 20
	})).Return(nil, nil)

	rec := serve(t, http.MethodGet, "/transactions",
		"/transactions?account_id=4&from=2024-03-01&limit=10&offset=20", "", h.GetTransactions)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"transactions":[],"limit":10,"offset":20}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestGetTransactions_BadQuery(t *testing.T) {
	for _, q := range []string{"?year=2024", "?limit=ten", "?account_id=-1", "?from=yesterday"} {
		t.Run(q, func(t *testing.T) {
			svc := new(MockLedgerService)
			h := NewTransactionHandler(svc, new(MockAccountService))

			rec := serve(t, http.MethodGet, "/transactions", "/transactions"+q, "", h.GetTransactions)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
