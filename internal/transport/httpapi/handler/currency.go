package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homebooks/ledger/internal/platform/currency"
)

// CurrencyServiceInterface reads currency master data
type CurrencyServiceInterface interface {
	List(ctx context.Context) ([]*currency.Currency, error)
	Get(ctx context.Context, code string) (*currency.Currency, error)
}

// CurrencyHandler serves currency master data
type CurrencyHandler struct {
	currencies CurrencyServiceInterface
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(svc CurrencyServiceInterface) *CurrencyHandler {
	return &CurrencyHandler{currencies: svc}
}

// ListCurrencies handles GET /currencies
func (h *CurrencyHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	list, err := h.currencies.List(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	if list == nil {
		list = []*currency.Currency{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"currencies": list})
}

// GetCurrency handles GET /currencies/{code}
func (h *CurrencyHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	c, err := h.currencies.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}
