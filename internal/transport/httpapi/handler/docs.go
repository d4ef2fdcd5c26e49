package handler

import "net/http"

// DocsHandler serves the OpenAPI document
type DocsHandler struct {
	specContent []byte
}

// NewDocsHandler creates a new docs handler
func NewDocsHandler(specContent []byte) *DocsHandler {
	return &DocsHandler{specContent: specContent}
}

// GetOpenAPISpec handles GET /docs
func (h *DocsHandler) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(h.specContent)
}

// GetOpenAPIInfo handles GET /docs/info
func (h *DocsHandler) GetOpenAPIInfo(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"title":       "Household Ledger API",
		"version":     Version,
		"docs_url":    "/docs",
		"description": "Double-entry household ledger with account hierarchy and budgets",
	})
}
