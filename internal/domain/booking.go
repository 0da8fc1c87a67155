package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the payment state of a booking.
type BookingStatus string

const (
	BookingStatusUnpaid    BookingStatus = "unpaid"
	BookingStatusPartial   BookingStatus = "partial"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents one issued ticket and its financial state.
type Booking struct {
	ID            string
	BookingNumber string
	CustomerID    string
	IssuerID      string
	Airport       string
	Country       string
	DepartureDate time.Time

	// CostPrice is what the agency owes the issuing airline.
	// SellPrice is what the customer owes the agency.
	CostPrice       decimal.Decimal
	SellPrice       decimal.Decimal
	InitialPayment  decimal.Decimal
	TotalPaid       decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          BookingStatus

	// Cancellation fields. The *BeforeCancel snapshots hold the values the
	// booking carried at the moment of cancellation.
	CancelReason      string
	CancelTax         decimal.Decimal
	CancelCommission  decimal.Decimal
	PayBeforeCancel   decimal.Decimal
	CostBeforeCancel  decimal.Decimal
	PriceBeforeCancel decimal.Decimal
	RefundAmount      decimal.Decimal
	RefundSettledAt   *time.Time

	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cancelled reports whether the booking has left the active lifecycle.
func (b *Booking) Cancelled() bool {
	return b.Status == BookingStatusCancelled
}

// Recalculate derives RemainingAmount and Status from SellPrice and
// TotalPaid. It must be called by every write path that touches either
// field. Once the booking is cancelled the derivation is frozen and
// Recalculate is a no-op.
func (b *Booking) Recalculate() {
	if b.Cancelled() {
		return
	}

	remaining := b.SellPrice.Sub(b.TotalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	b.RemainingAmount = remaining

	switch {
	case b.TotalPaid.GreaterThanOrEqual(b.SellPrice):
		b.Status = BookingStatusPaid
	case b.TotalPaid.IsPositive():
		b.Status = BookingStatusPartial
	default:
		b.Status = BookingStatusUnpaid
	}
}

// ApplyCancellation reprices the booking at cancellation time and freezes
// it. The cancellation tax becomes the new cost price and tax+commission
// the new sell price; the paid amount is capped to the new price. The
// refund owed to the customer is computed from the paid amount BEFORE the
// cap, which is the amount actually overpaid relative to the new price.
func (b *Booking) ApplyCancellation(reason string, cancelTax, cancelCommission decimal.Decimal) {
	b.PayBeforeCancel = b.InitialPayment
	b.CostBeforeCancel = b.CostPrice
	b.PriceBeforeCancel = b.SellPrice

	originalPaid := b.TotalPaid

	b.CancelReason = reason
	b.CancelTax = cancelTax
	b.CancelCommission = cancelCommission
	b.CostPrice = cancelTax
	b.SellPrice = cancelTax.Add(cancelCommission)

	if b.TotalPaid.GreaterThan(b.SellPrice) {
		b.TotalPaid = b.SellPrice
	}
	b.RemainingAmount = b.SellPrice.Sub(b.TotalPaid)

	if originalPaid.GreaterThan(b.SellPrice) {
		b.RefundAmount = originalPaid.Sub(b.SellPrice)
	} else {
		b.RefundAmount = decimal.Zero
	}

	b.Status = BookingStatusCancelled
}

// Validate checks the booking's creation-time invariants.
func (b *Booking) Validate() error {
	if b.SellPrice.IsNegative() || b.CostPrice.IsNegative() {
		return ErrInvalidAmount
	}

	if b.InitialPayment.IsNegative() {
		return ErrInvalidAmount
	}

	return nil
}
