package handler

import (
	"context"
	"net/http"

	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/pkg/money"
)

// AccountServiceInterface defines the account operations the handler needs
type AccountServiceInterface interface {
	Create(ctx context.Context, accountType account.AccountType, name, currency string) (*account.Account, error)
	Get(ctx context.Context, id int64) (*account.Account, error)
	List(ctx context.Context) ([]*account.Account, error)
	ListByType(ctx context.Context, accountType account.AccountType) ([]*account.DetailedAccount, error)
	Delete(ctx context.Context, id int64) error
}

// BalanceServiceInterface reads derived balances
type BalanceServiceInterface interface {
	CurrentBalance(ctx context.Context, accountID int64) (int64, error)
}

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accounts AccountServiceInterface
	balances BalanceServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts AccountServiceInterface, balances BalanceServiceInterface) *AccountHandler {
	return &AccountHandler{accounts: accounts, balances: balances}
}

// CreateAccountRequest represents the account creation request
type CreateAccountRequest struct {
	Type     account.AccountType `json:"type"`
	Name     string              `json:"name"`
	Currency string              `json:"currency"`
}

// BalanceResponse is an account balance in minor units plus display forms
type BalanceResponse struct {
	AccountID int64  `json:"account_id"`
	Currency  string `json:"currency"`
	Balance   int64  `json:"balance"`
	Amount    string `json:"amount"`
	Display   string `json:"display"`
}

// AccountsListResponse represents the response for listing accounts
type AccountsListResponse struct {
	Accounts interface{} `json:"accounts"`
}

// CreateAccount handles POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	acc, err := h.accounts.Create(r.Context(), req.Type, req.Name, req.Currency)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, acc)
}

// ListAccounts handles GET /accounts. With ?type= only that type is listed,
// together with balances.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("type"); raw != "" {
		accountType, err := account.ParseAccountType(raw)
		if err != nil {
			respondAppError(w, err)
			return
		}
		detailed, err := h.accounts.ListByType(r.Context(), accountType)
		if err != nil {
			respondAppError(w, err)
			return
		}
		if detailed == nil {
			detailed = []*account.DetailedAccount{}
		}
		respondWithJSON(w, http.StatusOK, AccountsListResponse{Accounts: detailed})
		return
	}

	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}
	respondWithJSON(w, http.StatusOK, AccountsListResponse{Accounts: accounts})
}

// GetAccount handles GET /accounts/{id}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid account ID")
		return
	}

	acc, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, acc)
}

// DeleteAccount handles DELETE /accounts/{id}
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid account ID")
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBalance handles GET /accounts/{id}/balance
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid account ID")
		return
	}

	acc, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	balance, err := h.balances.CurrentBalance(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, BalanceResponse{
		AccountID: acc.ID,
		Currency:  acc.Currency,
		Balance:   balance,
		Amount:    money.FromMinorUnits(balance, money.Fraction(acc.Currency)),
		Display:   money.Display(balance, acc.Currency),
	})
}
