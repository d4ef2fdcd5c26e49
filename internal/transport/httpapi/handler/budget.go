package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/homebooks/ledger/internal/platform/budget"
)

// BudgetServiceInterface defines the budget operations the handler needs
type BudgetServiceInterface interface {
	Create(ctx context.Context, req budget.CreateRequest) (*budget.Budget, error)
	Get(ctx context.Context, id int64) (*budget.Budget, error)
	List(ctx context.Context) ([]*budget.Budget, error)
	Delete(ctx context.Context, id int64) error
	SetEntry(ctx context.Context, budgetID, accountID, target int64) (*budget.Entry, error)
	RemoveEntry(ctx context.Context, budgetID, accountID int64) error
	Entries(ctx context.Context, budgetID int64) ([]*budget.Entry, error)
	Report(ctx context.Context, budgetID int64) (*budget.Report, error)
}

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgets BudgetServiceInterface
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(svc BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{budgets: svc}
}

// CreateBudgetRequest represents a new budget period. Dates accept RFC 3339
// or YYYY-MM-DD.
type CreateBudgetRequest struct {
	Name  string `json:"name"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

// SetEntryRequest sets an account's target in minor units
type SetEntryRequest struct {
	Target json.Number `json:"target"`
}

// BudgetDetailResponse is a budget with its entries
type BudgetDetailResponse struct {
	*budget.Budget
	Entries []*budget.Entry `json:"entries"`
}

// CreateBudget handles POST /budgets
func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	create := budget.CreateRequest{Name: req.Name}
	if req.Open != "" {
		t, err := parseTime(req.Open)
		if err != nil {
			respondBadRequest(w, "invalid open date")
			return
		}
		create.Open = t
	}
	if req.Close != "" {
		t, err := parseTime(req.Close)
		if err != nil {
			respondBadRequest(w, "invalid close date")
			return
		}
		create.Close = t
	}

	b, err := h.budgets.Create(r.Context(), create)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, b)
}

// ListBudgets handles GET /budgets
func (h *BudgetHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.List(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	if budgets == nil {
		budgets = []*budget.Budget{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})
}

// GetBudget handles GET /budgets/{id}
func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid budget ID")
		return
	}

	b, err := h.budgets.Get(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	entries, err := h.budgets.Entries(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if entries == nil {
		entries = []*budget.Entry{}
	}
	respondWithJSON(w, http.StatusOK, BudgetDetailResponse{Budget: b, Entries: entries})
}

// DeleteBudget handles DELETE /budgets/{id}
func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid budget ID")
		return
	}

	if err := h.budgets.Delete(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetEntry handles PUT /budgets/{id}/entries/{accountID}
func (h *BudgetHandler) SetEntry(w http.ResponseWriter, r *http.Request) {
	budgetID, accountID, ok := entryParams(w, r)
	if !ok {
		return
	}

	var req SetEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	target, ok := minorUnits(req.Target)
	if !ok {
		respondBadRequest(w, "target must be an integer number of minor units")
		return
	}

	entry, err := h.budgets.SetEntry(r.Context(), budgetID, accountID, target)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entry)
}

// RemoveEntry handles DELETE /budgets/{id}/entries/{accountID}
func (h *BudgetHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	budgetID, accountID, ok := entryParams(w, r)
	if !ok {
		return
	}

	if err := h.budgets.RemoveEntry(r.Context(), budgetID, accountID); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetReport handles GET /budgets/{id}/report
func (h *BudgetHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid budget ID")
		return
	}

	report, err := h.budgets.Report(r.Context(), id)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

func entryParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	budgetID, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid budget ID")
		return 0, 0, false
	}
	accountID, ok := idParam(r, "accountID")
	if !ok {
		respondBadRequest(w, "invalid account ID")
		return 0, 0, false
	}
	return budgetID, accountID, true
}
