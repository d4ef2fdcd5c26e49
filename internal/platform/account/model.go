package account

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AccountType classifies an account. The ordinal doubles as the id of the
// type's root node in the account hierarchy, so the order must never change.
type AccountType int

const (
	Assets AccountType = iota
	Liabilities
	Equities
	Revenue
	Expenses
	Gains
	Losses
)

// NumAccountTypes is the number of account types (and hierarchy roots)
const NumAccountTypes = 7

var accountTypeNames = [NumAccountTypes]string{
	"Assets", "Liabilities", "Equities", "Revenue", "Expenses", "Gains", "Losses",
}

// AllAccountTypes returns every account type in ordinal order
func AllAccountTypes() []AccountType {
	types := make([]AccountType, NumAccountTypes)
	for i := range types {
		types[i] = AccountType(i)
	}
	return types
}

// IsValid checks if the account type is one of the seven known types
func (t AccountType) IsValid() bool {
	return t >= Assets && t <= Losses
}

func (t AccountType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("AccountType(%d)", int(t))
	}
	return accountTypeNames[t]
}

// ParseAccountType accepts a type name (case-insensitive) or its ordinal
func ParseAccountType(s string) (AccountType, error) {
	s = strings.TrimSpace(s)
	for i, name := range accountTypeNames {
		if strings.EqualFold(s, name) {
			return AccountType(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && AccountType(n).IsValid() {
		return AccountType(n), nil
	}
	return 0, ErrInvalidAccountType
}

// MarshalJSON writes the type as its name
func (t AccountType) MarshalJSON() ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidAccountType
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON reads either a name or an ordinal
func (t *AccountType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseAccountType(name)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return ErrInvalidAccountType
	}
	if !AccountType(ordinal).IsValid() {
		return ErrInvalidAccountType
	}
	*t = AccountType(ordinal)
	return nil
}

// Account is a single ledger account. Accounts are immutable once created.
type Account struct {
	ID       int64       `json:"id"`
	Type     AccountType `json:"type"`
	Name     string      `json:"name"`
	Currency string      `json:"currency"`
}

// DetailedAccount is an account together with its derived balance
// (debits minus credits, in minor units)
type DetailedAccount struct {
	Account
	Balance int64 `json:"balance"`
}

// MaxNameLength bounds account and hierarchy group names
const MaxNameLength = 100

// ValidateCreate validates account fields for creation
func (a *Account) ValidateCreate() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return ErrMissingAccountName
	}
	if len(a.Name) > MaxNameLength {
		return ErrAccountNameTooLong
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Currency == "" {
		return ErrMissingCurrency
	}
	return nil
}

// CompatibleWith reports whether value may move from a to other: they must be
// distinct accounts in the same currency.
func (a *Account) CompatibleWith(other *Account) error {
	if a.ID == other.ID {
		return ErrSameAccount
	}
	if a.Currency != other.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, a.Currency, other.Currency)
	}
	return nil
}
