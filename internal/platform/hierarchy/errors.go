package hierarchy

import apperrors "github.com/homebooks/ledger/internal/shared/errors"

var (
	// Build errors
	ErrMalformedRow = apperrors.IntegrityViolation("malformed hierarchy row")
	ErrDuplicateID  = apperrors.IntegrityViolation("duplicate hierarchy node id")
	ErrOrphanNode   = apperrors.IntegrityViolation("hierarchy node has no reachable parent")

	// Node management errors
	ErrNodeNotFound       = apperrors.NotFound("hierarchy node")
	ErrParentNotFound     = apperrors.Validation("parent node does not exist")
	ErrParentIsLeaf       = apperrors.Validation("accounts cannot have children")
	ErrParentTypeMismatch = apperrors.Validation("parent node belongs to a different account type")
	ErrMissingGroupName   = apperrors.Validation("group name is required")
	ErrGroupNameTooLong   = apperrors.Validation("group name exceeds 100 characters")
	ErrRootImmutable      = apperrors.Validation("root nodes cannot be deleted")
	ErrNodeHasChildren    = apperrors.Conflict("node still has children")
	ErrAccountPlaced      = apperrors.Conflict("account is already placed in the hierarchy")
)
