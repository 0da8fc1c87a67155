package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodCheck    PaymentMethod = "check"
	MethodOther    PaymentMethod = "other"
)

var validPaymentMethods = map[PaymentMethod]bool{
	MethodCash:     true,
	MethodCard:     true,
	MethodTransfer: true,
	MethodCheck:    true,
	MethodOther:    true,
}

// Valid reports whether the method is a known payment method.
func (m PaymentMethod) Valid() bool {
	return validPaymentMethods[m]
}

// Payment is one money receipt tied to exactly one booking. The amount is
// immutable: there is no edit operation, only add and delete.
type Payment struct {
	ID            string
	BookingID     string
	Amount        decimal.Decimal
	Method        PaymentMethod
	PaidAt        time.Time
	ReceiptNumber string
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}

// Validate checks the payment's creation invariants.
func (p *Payment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !p.Method.Valid() {
		return ErrInvalidPaymentMethod
	}

	return nil
}
