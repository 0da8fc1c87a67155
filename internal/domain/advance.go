package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceStatus is the approval state of a salary advance.
type AdvanceStatus string

const (
	AdvanceStatusPending  AdvanceStatus = "pending"
	AdvanceStatusApproved AdvanceStatus = "approved"
	AdvanceStatusRejected AdvanceStatus = "rejected"
)

// Advance is an employee cash advance request. Only approval moves money:
// a pending or rejected advance never touched the till, so only pending
// advances may be deleted and approved ones are immutable.
type Advance struct {
	ID          string
	RequestedBy string
	Amount      decimal.Decimal
	Reason      string
	Status      AdvanceStatus
	ApprovedBy  string
	ApprovedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the advance's creation invariants.
func (a *Advance) Validate() error {
	if a.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// Pending reports whether the advance is still awaiting a decision.
func (a *Advance) Pending() bool {
	return a.Status == AdvanceStatusPending
}
