package ledger

import apperrors "github.com/homebooks/ledger/internal/shared/errors"

// Transaction errors
var (
	ErrMissingTransactionName  = apperrors.Validation("transaction name is required")
	ErrTransactionNameTooLong  = apperrors.Validation("transaction name exceeds 255 characters")
	ErrNonPositiveMagnitude    = apperrors.Validation("magnitude must be a positive number of minor units")
	ErrInvalidTransactionID    = apperrors.Validation("invalid transaction ID")
	ErrInvalidAccountReference = apperrors.Validation("from and to account IDs are required")
	ErrTransactionNotFound     = apperrors.NotFound("transaction")
)

// Filter errors
var (
	ErrInvalidMonth     = apperrors.Validation("month must be between 1 and 12")
	ErrInvalidYear      = apperrors.Validation("year must be 1970 or later")
	ErrInvalidDateRange = apperrors.Validation("from must not be after to")
)

// Integrity errors. These indicate data modified outside the ledger's own
// write path and are never repaired automatically.
var (
	ErrUnpairedEntries  = apperrors.IntegrityViolation("transaction entries are not a matched debit/credit pair")
	ErrLedgerImbalanced = apperrors.IntegrityViolation("total debits do not equal total credits")
)
