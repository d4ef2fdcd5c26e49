package handler

import (
	"context"
	"net/http"

	"github.com/homebooks/ledger/internal/platform/account"
	"github.com/homebooks/ledger/internal/platform/hierarchy"
)

// HierarchyServiceInterface defines the hierarchy operations the handler needs
type HierarchyServiceInterface interface {
	Build(ctx context.Context) (*hierarchy.Forest, error)
	CreateGroup(ctx context.Context, accountType account.AccountType, parentID int64, name string) (int64, error)
	AttachAccount(ctx context.Context, parentID, accountID int64) (int64, error)
	DeleteNode(ctx context.Context, id int64) error
}

// HierarchyHandler serves the account tree
type HierarchyHandler struct {
	hierarchy HierarchyServiceInterface
}

// NewHierarchyHandler creates a new hierarchy handler
func NewHierarchyHandler(svc HierarchyServiceInterface) *HierarchyHandler {
	return &HierarchyHandler{hierarchy: svc}
}

// HierarchyResponse is the assembled forest plus what the build did with
// orphans
type HierarchyResponse struct {
	Roots   []*hierarchy.TreeNode `json:"roots"`
	Orphans []hierarchy.Orphan    `json:"orphans"`
}

// CreateGroupRequest represents a new group below parent_id
type CreateGroupRequest struct {
	Type     account.AccountType `json:"type"`
	ParentID int64               `json:"parent_id"`
	Name     string              `json:"name"`
}

// AttachAccountRequest places an account below parent_id
type AttachAccountRequest struct {
	ParentID  int64 `json:"parent_id"`
	AccountID int64 `json:"account_id"`
}

// NodeCreatedResponse carries the id of a new node
type NodeCreatedResponse struct {
	ID int64 `json:"id"`
}

// GetHierarchy handles GET /hierarchy. ?format=text returns the plain outline.
func (h *HierarchyHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	forest, err := h.hierarchy.Build(r.Context())
	if err != nil {
		respondAppError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		forest.Render(w)
		return
	}

	orphans := forest.Orphans()
	if orphans == nil {
		orphans = []hierarchy.Orphan{}
	}
	respondWithJSON(w, http.StatusOK, HierarchyResponse{Roots: forest.Tree(), Orphans: orphans})
}

// CreateGroup handles POST /hierarchy/groups
func (h *HierarchyHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	id, err := h.hierarchy.CreateGroup(r.Context(), req.Type, req.ParentID, req.Name)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, NodeCreatedResponse{ID: id})
}

// AttachAccount handles POST /hierarchy/leaves
func (h *HierarchyHandler) AttachAccount(w http.ResponseWriter, r *http.Request) {
	var req AttachAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	id, err := h.hierarchy.AttachAccount(r.Context(), req.ParentID, req.AccountID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, NodeCreatedResponse{ID: id})
}

// DeleteNode handles DELETE /hierarchy/{id}
func (h *HierarchyHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondBadRequest(w, "invalid node ID")
		return
	}

	if err := h.hierarchy.DeleteNode(r.Context(), id); err != nil {
		respondAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
