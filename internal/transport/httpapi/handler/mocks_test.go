package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/internal/platform/budget"
	"github.com/homebooks/ledger/internal/platform/currency"
	"github.com/homebooks/ledger/internal/platform/hierarchy"
)

// serve routes a single request through chi so URL params resolve
func serve(t *testing.T, method, pattern, target, body string, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// MockAccountService is a mock implementation of AccountServiceInterface
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Create(ctx context.Context, accountType account.AccountType, name, currency string) (*account.Account, error) {
	args := m.Called(ctx, accountType, name, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) Get(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) List(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountService) ListByType(ctx context.Context, accountType account.AccountType) ([]*account.DetailedAccount, error) {
	args := m.Called(ctx, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.DetailedAccount), args.Error(1)
}

func (m *MockAccountService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockLedgerService is a mock of the ledger operations used by the handlers
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateTransaction(ctx context.Context, req ledger.TransferRequest) (*ledger.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerService) UpdateTransaction(ctx context.Context, req ledger.UpdateRequest) (*ledger.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, id int64) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, filters ledger.TransactionFilters) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactionsByMonth(ctx context.Context, year, month int) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerService) CurrentBalance(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) CheckIntegrity(ctx context.Context) (*ledger.IntegrityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.IntegrityReport), args.Error(1)
}

// MockHierarchyService is a mock implementation of HierarchyServiceInterface
type MockHierarchyService struct {
	mock.Mock
}

func (m *MockHierarchyService) Build(ctx context.Context) (*hierarchy.Forest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hierarchy.Forest), args.Error(1)
}

func (m *MockHierarchyService) CreateGroup(ctx context.Context, accountType account.AccountType, parentID int64, name string) (int64, error) {
	args := m.Called(ctx, accountType, parentID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHierarchyService) AttachAccount(ctx context.Context, parentID, accountID int64) (int64, error) {
	args := m.Called(ctx, parentID, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHierarchyService) DeleteNode(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockBudgetService is a mock implementation of BudgetServiceInterface
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) Create(ctx context.Context, req budget.CreateRequest) (*budget.Budget, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Budget), args.Error(1)
}

func (m *MockBudgetService) Get(ctx context.Context, id int64) (*budget.Budget, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Budget), args.Error(1)
}

func (m *MockBudgetService) List(ctx context.Context) ([]*budget.Budget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*budget.Budget), args.Error(1)
}

func (m *MockBudgetService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBudgetService) SetEntry(ctx context.Context, budgetID, accountID, target int64) (*budget.Entry, error) {
	args := m.Called(ctx, budgetID, accountID, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Entry), args.Error(1)
}

func (m *MockBudgetService) RemoveEntry(ctx context.Context, budgetID, accountID int64) error {
	return m.Called(ctx, budgetID, accountID).Error(0)
}

func (m *MockBudgetService) Entries(ctx context.Context, budgetID int64) ([]*budget.Entry, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*budget.Entry), args.Error(1)
}

func (m *MockBudgetService) Report(ctx context.Context, budgetID int64) (*budget.Report, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*budget.Report), args.Error(1)
}

// MockCurrencyService is a mock implementation of CurrencyServiceInterface
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) List(ctx context.Context) ([]*currency.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*currency.Currency), args.Error(1)
}

func (m *MockCurrencyService) Get(ctx context.Context, code string) (*currency.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Currency), args.Error(1)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
