package currency

import apperrors "github.com/homebooks/ledger/internal/shared/errors"

var (
	ErrInvalidCurrencyCode = apperrors.Validation("currency code must be an ISO-4217 code")
	ErrMissingCurrencyName = apperrors.Validation("currency name is required")
	ErrInvalidMinorUnit    = apperrors.Validation("currency minor unit must be between 0 and 4")
	ErrCurrencyNotFound    = apperrors.NotFound("currency")
)
