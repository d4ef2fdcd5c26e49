package handler

import (
	"context"
	"net/http"

	"github.com/homebooks/ledger/internal/ledger"
)

// IntegrityChecker runs the global ledger check
type IntegrityChecker interface {
	CheckIntegrity(ctx context.Context) (*ledger.IntegrityReport, error)
}

// LedgerHandler serves ledger-wide diagnostics
type LedgerHandler struct {
	checker IntegrityChecker
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(checker IntegrityChecker) *LedgerHandler {
	return &LedgerHandler{checker: checker}
}

// GetIntegrity handles GET /ledger/integrity. A failed check is still a
// successful request; the body says what is wrong.
func (h *LedgerHandler) GetIntegrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.CheckIntegrity(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
