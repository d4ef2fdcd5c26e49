package ledger

import (
	"fmt"
	"strings"
	"time"
)

// EntryKind says which side of a transaction an entry is on
type EntryKind string

const (
	Debit  EntryKind = "DEBIT"
	Credit EntryKind = "CREDIT"
)

// IsValid checks if the kind is Debit or Credit
func (k EntryKind) IsValid() bool {
	return k == Debit || k == Credit
}

// Entry is one side of a transaction bound to one account. Entries are only
// ever written together with their sibling.
type Entry struct {
	ID            int64     `json:"id"`
	TransactionID int64     `json:"transaction_id"`
	AccountID     int64     `json:"account_id"`
	AccountName   string    `json:"account_name,omitempty"`
	Magnitude     int64     `json:"magnitude"` // minor units, always > 0
	Kind          EntryKind `json:"kind"`
}

// Signed returns the entry's contribution to its account balance:
// debits count positive, credits negative.
func (e *Entry) Signed() int64 {
	if e.Kind == Debit {
		return e.Magnitude
	}
	return -e.Magnitude
}

// Transaction is a named, timestamped movement of value between two accounts
type Transaction struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	Entries    []*Entry  `json:"entries"`
}

// Debit returns the debit entry, or nil
func (t *Transaction) Debit() *Entry {
	return t.find(Debit)
}

// Credit returns the credit entry, or nil
func (t *Transaction) Credit() *Entry {
	return t.find(Credit)
}

func (t *Transaction) find(kind EntryKind) *Entry {
	for _, e := range t.Entries {
		if e.Kind == kind {
			return e
		}
	}
	return nil
}

// VerifyPairing checks that the entries are exactly one debit and one credit
// of equal, positive magnitude
func (t *Transaction) VerifyPairing() error {
	if len(t.Entries) != 2 {
		return fmt.Errorf("%w: transaction %d has %d entries", ErrUnpairedEntries, t.ID, len(t.Entries))
	}
	debit, credit := t.Debit(), t.Credit()
	if debit == nil || credit == nil {
		return fmt.Errorf("%w: transaction %d has entry kinds %s/%s",
			ErrUnpairedEntries, t.ID, t.Entries[0].Kind, t.Entries[1].Kind)
	}
	if debit.Magnitude != credit.Magnitude {
		return fmt.Errorf("%w: transaction %d debit %d != credit %d",
			ErrUnpairedEntries, t.ID, debit.Magnitude, credit.Magnitude)
	}
	if debit.Magnitude <= 0 {
		return fmt.Errorf("%w: transaction %d has non-positive magnitude", ErrUnpairedEntries, t.ID)
	}
	return nil
}

// MaxNameLength bounds transaction names
const MaxNameLength = 255

// TransferRequest asks the ledger to move Magnitude from one account to another
type TransferRequest struct {
	FromAccountID int64
	ToAccountID   int64
	Magnitude     int64
	Name          string
	// OccurredAt backdates the transaction; zero means now
	OccurredAt time.Time
}

// Validate checks the request fields that need no storage access
func (r *TransferRequest) Validate() error {
	if err := validateNameAndMagnitude(&r.Name, r.Magnitude); err != nil {
		return err
	}
	if r.FromAccountID <= 0 || r.ToAccountID <= 0 {
		return ErrInvalidAccountReference
	}
	return nil
}

// UpdateRequest rewrites a transaction's name and the magnitude of both entries
type UpdateRequest struct {
	ID        int64
	Name      string
	Magnitude int64
}

// Validate checks the request fields
func (r *UpdateRequest) Validate() error {
	if r.ID <= 0 {
		return ErrInvalidTransactionID
	}
	return validateNameAndMagnitude(&r.Name, r.Magnitude)
}

func validateNameAndMagnitude(name *string, magnitude int64) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return ErrMissingTransactionName
	}
	if len(*name) > MaxNameLength {
		return ErrTransactionNameTooLong
	}
	if magnitude <= 0 {
		return ErrNonPositiveMagnitude
	}
	return nil
}

// TransactionFilters narrows ListTransactions. From is inclusive, To exclusive.
type TransactionFilters struct {
	AccountID *int64
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// Totals are the ledger-wide debit and credit sums
type Totals struct {
	Debits  int64 `json:"debits"`
	Credits int64 `json:"credits"`
	Entries int64 `json:"entries"`
}

// Balanced reports whether total debits equal total credits
func (t Totals) Balanced() bool {
	return t.Debits == t.Credits
}

// IntegrityReport is the result of a full ledger check
type IntegrityReport struct {
	Balanced bool `json:"balanced"`
	Totals
	// UnpairedTransactions lists transactions whose entry count is not two
	UnpairedTransactions []int64   `json:"unpaired_transactions"`
	CheckedAt            time.Time `json:"checked_at"`
}

// OK reports whether the ledger passed every check
func (r *IntegrityReport) OK() bool {
	return r.Balanced && len(r.UnpairedTransactions) == 0
}
