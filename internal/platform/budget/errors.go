package budget

import apperrors "github.com/homebooks/ledger/internal/shared/errors"

var (
	// Validation errors
	ErrMissingBudgetName = apperrors.Validation("budget name is required")
	ErrBudgetNameTooLong = apperrors.Validation("budget name exceeds 100 characters")
	ErrMissingPeriod     = apperrors.Validation("budget open and close are required")
	ErrInvalidPeriod     = apperrors.Validation("budget close must not be before open")
	ErrInvalidBudgetID   = apperrors.Validation("invalid budget ID")
	ErrInvalidAccountID  = apperrors.Validation("invalid account ID")

	ErrPeriodOverlap  = apperrors.PeriodConflict("budget period overlaps an existing budget")
	ErrBudgetNotFound = apperrors.NotFound("budget")
	ErrEntryNotFound  = apperrors.NotFound("budget entry")
)
