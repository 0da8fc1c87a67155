package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost paid from the till. Creating one debits
// the treasury, deleting one credits it back, and changing the amount
// applies the difference.
type Expense struct {
	ID        string
	Title     string
	Amount    decimal.Decimal
	Category  string
	SpentAt   time.Time
	Notes     string
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the expense's invariants.
func (e *Expense) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}
