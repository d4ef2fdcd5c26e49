package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/homebooks/ledger/internal/ledger"
	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/pkg/money"
)

// LedgerServiceInterface defines the ledger operations the handler needs
type LedgerServiceInterface interface {
	CreateTransaction(ctx context.Context, req ledger.TransferRequest) (*ledger.Transaction, error)
	UpdateTransaction(ctx context.Context, req ledger.UpdateRequest) (*ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (*ledger.Transaction, error)
	ListTransactions(ctx context.Context, filters ledger.TransactionFilters) ([]*ledger.Transaction, error)
	ListTransactionsByMonth(ctx context.Context, year, month int) ([]*ledger.Transaction, error)
}

// AccountGetter resolves the currency used to read decimal amounts
type AccountGetter interface {
	Get(ctx context.Context, id int64) (*account.Account, error)
}

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	ledger   LedgerServiceInterface
	accounts AccountGetter
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledgerSvc LedgerServiceInterface, accounts AccountGetter) *TransactionHandler {
	return &TransactionHandler{ledger: ledgerSvc, accounts: accounts}
}

// CreateTransactionRequest represents the transfer request. Exactly one of
// Magnitude (integer minor units) or Amount (decimal string in the account
// currency) must be set.
type CreateTransactionRequest struct {
	FromAccountID int64       `json:"from_account_id"`
	ToAccountID   int64       `json:"to_account_id"`
	Magnitude     json.Number `json:"magnitude,omitempty"`
	Amount        string      `json:"amount,omitempty"`
	Name          string      `json:"name"`
	OccurredAt    *time.Time  `json:"occurred_at,omitempty"`
}

// UpdateTransactionRequest represents the update request
type UpdateTransactionRequest struct {
	Name      string      `json:"name"`
	Magnitude json.Number `json:"magnitude,omitempty"`
	Amount    string      `json:"amount,omitempty"`
}

// TransactionsListResponse represents the response for listing transactions
type TransactionsListResponse struct {
	Transactions []*ledger.Transaction `json:"transactions"`
	Limit        int                   `json:"limit,omitempty"`
	Offset       int                   `json:"offset,omitempty"`
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	magnitude, err := h.resolveMagnitude(r.Context(), req.Magnitude, req.Amount, req.FromAccountID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	transfer := ledger.TransferRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Magnitude:     magnitude,
		Name:          req.Name,
	}
	if req.OccurredAt != nil {
		transfer.OccurredAt = *req.OccurredAt
	}

	tx, err := h.ledger.CreateTransaction(r.Context(), transfer)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, tx)
}

// GetTransaction handles GET /transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid transaction ID")
		return
	}

	tx, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid transaction ID")
		return
	}

	var req UpdateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	var accountID int64
	if req.Amount != "" {
		existing, err := h.ledger.GetTransaction(r.Context(), id)
		if err != nil {
			respondAppError(w, err)
			return
		}
		accountID = existing.Debit().AccountID
	}

	magnitude, err := h.resolveMagnitude(r.Context(), req.Magnitude, req.Amount, accountID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	tx, err := h.ledger.UpdateTransaction(r.Context(), ledger.UpdateRequest{ID: id, Name: req.Name, Magnitude: magnitude})
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid transaction ID")
		return
	}

	if err := h.ledger.DeleteTransaction(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTransactions handles GET /transactions.
//
// ?year=&month= lists one calendar month. Otherwise from (inclusive), to
// (exclusive), account_id, limit and offset narrow the list. Dates accept
// RFC 3339 or YYYY-MM-DD.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("year") != "" || query.Get("month") != "" {
		year, errY := strconv.Atoi(query.Get("year"))
		month, errM := strconv.Atoi(query.Get("month"))
		if errY != nil || errM != nil {
			respondBadRequest(w, "year and month must both be integers")
			return
		}
		txs, err := h.ledger.ListTransactionsByMonth(r.Context(), year, month)
		if err != nil {
			respondAppError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, TransactionsListResponse{Transactions: nonNil(txs)})
		return
	}

	var filters ledger.TransactionFilters

	limit, ok := queryInt(r, "limit", ledger.DefaultListLimit)
	if !ok {
		respondBadRequest(w, "invalid limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		respondBadRequest(w, "invalid offset")
		return
	}
	filters.Limit, filters.Offset = limit, offset

	if raw := query.Get("account_id"); raw != "" {
		accountID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || accountID <= 0 {
			respondBadRequest(w, "invalid account_id")
			return
		}
		filters.AccountID = &accountID
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &filters.From}, {"to", &filters.To}} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			respondBadRequest(w, "invalid "+p.name+" date")
			return
		}
		*p.dst = &t
	}

	txs, err := h.ledger.ListTransactions(r.Context(), filters)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, TransactionsListResponse{
		Transactions: nonNil(txs),
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	})
}

// resolveMagnitude turns either an integer magnitude or a decimal amount in
// the currency of accountID into minor units
func (h *TransactionHandler) resolveMagnitude(ctx context.Context, magnitude json.Number, amount string, accountID int64) (int64, error) {
	switch {
	case magnitude != "" && amount != "":
		return 0, errAmbiguousAmount
	case magnitude != "":
		v, ok := minorUnits(magnitude)
		if !ok {
			return 0, errFractionalMagnitude
		}
		return v, nil
	case amount != "":
		acc, err := h.accounts.Get(ctx, accountID)
		if err != nil {
			return 0, err
		}
		v, err := money.ToMinorUnits(amount, money.Fraction(acc.Currency))
		if err != nil {
			return 0, badAmount(err)
		}
		return v, nil
	}
	return 0, ledger.ErrNonPositiveMagnitude
}

func nonNil(txs []*ledger.Transaction) []*ledger.Transaction {
	if txs == nil {
		return []*ledger.Transaction{}
	}
	return txs
}

// parseTime accepts RFC 3339 timestamps or plain dates (UTC midnight)
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
