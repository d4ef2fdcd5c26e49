package account

import apperrors "github.com/homebooks/ledger/internal/shared/errors"

var (
	// Validation errors
	ErrMissingAccountName = apperrors.Validation("account name is required")
	ErrAccountNameTooLong = apperrors.Validation("account name exceeds 100 characters")
	ErrInvalidAccountType = apperrors.Validation("invalid account type")
	ErrMissingCurrency    = apperrors.Validation("account currency is required")
	ErrUnknownCurrency    = apperrors.Validation("currency is not in master data")
	ErrInvalidAccountID   = apperrors.Validation("invalid account ID")

	// Transfer compatibility
	ErrSameAccount      = apperrors.IncompatibleAccounts("cannot transfer from an account to itself")
	ErrCurrencyMismatch = apperrors.IncompatibleAccounts("accounts use different currencies")

	// Repository errors
	ErrAccountNotFound = apperrors.NotFound("account")
	ErrAccountInUse    = apperrors.Conflict("account is still referenced by ledger entries")
)
