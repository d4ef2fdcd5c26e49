package budget

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GraceDay extends a period's close when checking overlap and when reading
// actuals, so a close given as a calendar day covers that whole day
const GraceDay = 24 * time.Hour

// MaxNameLength is the longest budget name accepted
const MaxNameLength = 100

// Budget is a named period that accounts are measured against
type Budget struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Open   time.Time `json:"open"`
	Close  time.Time `json:"close"`
	Target uuid.UUID `json:"-"`
}

// End returns the exclusive end of the period
func (b *Budget) End() time.Time {
	return b.Close.Add(GraceDay)
}

// Overlaps reports whether [open, close] intersects the budget's period,
// both closes extended by the grace day
func (b *Budget) Overlaps(open, close time.Time) bool {
	return open.Before(b.End()) && b.Open.Before(close.Add(GraceDay))
}

// Entry attaches an account to a budget with a target balance in the
// account's minor units
type Entry struct {
	ID        int64 `json:"id"`
	BudgetID  int64 `json:"budget_id"`
	AccountID int64 `json:"account_id"`
	Balance   int64 `json:"balance"`
}

// CreateRequest holds the fields of a new budget
type CreateRequest struct {
	Name  string    `json:"name"`
	Open  time.Time `json:"open"`
	Close time.Time `json:"close"`
}

// Validate checks and normalises the request
func (r *CreateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrMissingBudgetName
	}
	if len(r.Name) > MaxNameLength {
		return ErrBudgetNameTooLong
	}
	if r.Open.IsZero() || r.Close.IsZero() {
		return ErrMissingPeriod
	}
	if r.Close.Before(r.Open) {
		return ErrInvalidPeriod
	}
	return nil
}

// ReportLine compares one account's target with what the ledger recorded
// inside the period
type ReportLine struct {
	AccountID   int64  `json:"account_id"`
	AccountName string `json:"account_name"`
	Currency    string `json:"currency"`
	Target      int64  `json:"target"`
	Actual      int64  `json:"actual"`
	Remaining   int64  `json:"remaining"`
}

// Report is the target/actual view of a budget
type Report struct {
	Budget *Budget       `json:"budget"`
	Lines  []*ReportLine `json:"lines"`
}
