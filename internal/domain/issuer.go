package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Issuer is the airline the agency buys tickets from. The agency owes an
// issuer the summed cost price of that issuer's bookings.
type Issuer struct {
	ID        string
	Name      string
	Country   string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IssuerPayment is a payment made BY the agency TO an issuer. It is a
// separate entity from customer payments and does not touch any booking's
// paid totals.
type IssuerPayment struct {
	ID            string
	IssuerID      string
	Amount        decimal.Decimal
	Method        PaymentMethod
	PaidAt        time.Time
	ReceiptNumber string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// Validate checks the issuer payment's creation invariants.
func (p *IssuerPayment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !p.Method.Valid() {
		return ErrInvalidPaymentMethod
	}

	return nil
}

// IssuerBalance is a recomputed (never stored) payable summary for one
// issuer: owed = sum of booking cost prices, paid = sum of issuer
// payments, outstanding = owed - paid.
type IssuerBalance struct {
	IssuerID    string          `json:"issuer_id"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
