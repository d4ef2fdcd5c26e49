package hierarchy

import (
	"context"
	"fmt"
	"strings"

	"github.com/homebooks/ledger/internal/platform/account"
	apperrors "github.com/homebooks/ledger/internal/shared/errors"
	"github.com/homebooks/ledger/pkg/logger"
)

// Service builds the account forest and manages its nodes
type Service struct {
	repo     Repository
	accounts AccountLookup
	policy   OrphanPolicy
	logger   *logger.Logger
}

// NewService creates a new hierarchy service
func NewService(repo Repository, accounts AccountLookup, policy OrphanPolicy, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		policy:   policy,
		logger:   log.WithComponent("hierarchy"),
	}
}

// Build loads every stored node and assembles the forest
func (s *Service) Build(ctx context.Context) (*Forest, error) {
	rows, err := s.repo.ListRows(ctx)
	if err != nil {
		return nil, apperrors.AsStorage(err, "failed to load hierarchy")
	}

	log := s.logger.WithContext(ctx)
	forest, err := Build(rows, s.policy, log)
	if err != nil {
		log.Error("hierarchy build failed", "rows", len(rows), "error", err)
		return nil, err
	}
	return forest, nil
}

// CreateGroup adds a named group below parentID
func (s *Service) CreateGroup(ctx context.Context, accountType account.AccountType, parentID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrMissingGroupName
	}
	if len(name) > account.MaxNameLength {
		return 0, ErrGroupNameTooLong
	}
	if !accountType.IsValid() {
		return 0, account.ErrInvalidAccountType
	}
	if err := s.validateParent(ctx, accountType, parentID); err != nil {
		return 0, err
	}

	id, err := s.repo.InsertGroup(ctx, accountType, parentID, name)
	if err != nil {
		return 0, apperrors.AsStorage(err, "failed to create group")
	}
	s.logger.WithContext(ctx).Info("hierarchy group created", "node_id", id, "parent_id", parentID, "type", accountType.String())
	return id, nil
}

// AttachAccount places an account as a leaf below parentID
func (s *Service) AttachAccount(ctx context.Context, parentID, accountID int64) (int64, error) {
	acc, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if err := s.validateParent(ctx, acc.Type, parentID); err != nil {
		return 0, err
	}

	id, err := s.repo.InsertLeaf(ctx, acc, parentID)
	if err != nil {
		return 0, apperrors.AsStorage(err, "failed to attach account")
	}
	s.logger.WithContext(ctx).Info("account attached to hierarchy", "node_id", id, "parent_id", parentID, "account_id", accountID)
	return id, nil
}

// DeleteNode removes a childless node. Roots cannot be removed.
func (s *Service) DeleteNode(ctx context.Context, id int64) error {
	if id >= 0 && id < account.NumAccountTypes {
		return ErrRootImmutable
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return apperrors.AsStorage(err, "failed to count children")
	}
	if children > 0 {
		return fmt.Errorf("%w: node %d has %d", ErrNodeHasChildren, id, children)
	}

	if err := s.repo.DeleteNode(ctx, id); err != nil {
		return apperrors.AsStorage(err, "failed to delete node")
	}
	s.logger.WithContext(ctx).Info("hierarchy node deleted", "node_id", id)
	return nil
}

// validateParent accepts the type's own root or an existing group of the same type
func (s *Service) validateParent(ctx context.Context, accountType account.AccountType, parentID int64) error {
	if parentID >= 0 && parentID < account.NumAccountTypes {
		if parentID != int64(accountType) {
			return ErrParentTypeMismatch
		}
		return nil
	}

	parent, err := s.repo.GetRow(ctx, parentID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
			return ErrParentNotFound
		}
		return apperrors.AsStorage(err, "failed to load parent node")
	}
	if parent.IsLeaf {
		return ErrParentIsLeaf
	}
	if parent.Type != accountType {
		return ErrParentTypeMismatch
	}
	return nil
}
