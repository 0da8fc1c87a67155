package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBooking_Recalculate(t *testing.T) {
	tests := []struct {
		name          string
		sellPrice     int64
		totalPaid     int64
		wantStatus    BookingStatus
		wantRemaining int64
	}{
		{
			name:          "nothing paid",
			sellPrice:     1000,
			totalPaid:     0,
			wantStatus:    BookingStatusUnpaid,
			wantRemaining: 1000,
		},
		{
			name:          "partially paid",
			sellPrice:     1000,
			totalPaid:     400,
			wantStatus:    BookingStatusPartial,
			wantRemaining: 600,
		},
		{
			name:          "exactly paid",
			sellPrice:     1000,
			totalPaid:     1000,
			wantStatus:    BookingStatusPaid,
			wantRemaining: 0,
		},
		{
			name:          "overpaid clamps remaining to zero",
			sellPrice:     1000,
			totalPaid:     1200,
			wantStatus:    BookingStatusPaid,
			wantRemaining: 0,
		},
		{
			name:          "free booking is paid immediately",
			sellPrice:     0,
			totalPaid:     0,
			wantStatus:    BookingStatusPaid,
			wantRemaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{
				SellPrice: decimal.NewFromInt(tt.sellPrice),
				TotalPaid: decimal.NewFromInt(tt.totalPaid),
			}

			b.Recalculate()

			if b.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, b.Status)
			}

			if !b.RemainingAmount.Equal(decimal.NewFromInt(tt.wantRemaining)) {
				t.Errorf("expected remaining %d, got %s", tt.wantRemaining, b.RemainingAmount)
			}
		})
	}
}

func TestBooking_Recalculate_FrozenWhenCancelled(t *testing.T) {
	b := &Booking{
		SellPrice:       decimal.NewFromInt(80),
		TotalPaid:       decimal.NewFromInt(80),
		RemainingAmount: decimal.Zero,
		Status:          BookingStatusCancelled,
	}

	b.TotalPaid = decimal.NewFromInt(500)
	b.Recalculate()

	if b.Status != BookingStatusCancelled {
		t.Errorf("expected status to stay cancelled, got %s", b.Status)
	}

	if !b.RemainingAmount.IsZero() {
		t.Errorf("expected remaining to stay 0, got %s", b.RemainingAmount)
	}
}

func TestBooking_ApplyCancellation(t *testing.T) {
	b := &Booking{
		CostPrice:      decimal.NewFromInt(600),
		SellPrice:      decimal.NewFromInt(1000),
		InitialPayment: decimal.NewFromInt(200),
		TotalPaid:      decimal.NewFromInt(1000),
		Status:         BookingStatusPaid,
	}

	b.ApplyCancellation("flight removed", decimal.NewFromInt(50), decimal.NewFromInt(30))

	if !b.CostPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected cost price 50, got %s", b.CostPrice)
	}

	if !b.SellPrice.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected sell price 80, got %s", b.SellPrice)
	}

	if !b.TotalPaid.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected total paid capped to 80, got %s", b.TotalPaid)
	}

	if !b.RemainingAmount.IsZero() {
		t.Errorf("expected remaining 0, got %s", b.RemainingAmount)
	}

	// Refund is computed from the paid amount before the cap.
	if !b.RefundAmount.Equal(decimal.NewFromInt(920)) {
		t.Errorf("expected refund 920, got %s", b.RefundAmount)
	}

	if b.Status != BookingStatusCancelled {
		t.Errorf("expected status cancelled, got %s", b.Status)
	}

	// Snapshots of pre-cancellation values.
	if !b.PriceBeforeCancel.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected price snapshot 1000, got %s", b.PriceBeforeCancel)
	}

	if !b.CostBeforeCancel.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected cost snapshot 600, got %s", b.CostBeforeCancel)
	}

	if !b.PayBeforeCancel.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected pay snapshot 200, got %s", b.PayBeforeCancel)
	}
}

func TestBooking_ApplyCancellation_NoRefundWhenUnderpaid(t *testing.T) {
	b := &Booking{
		CostPrice: decimal.NewFromInt(600),
		SellPrice: decimal.NewFromInt(1000),
		TotalPaid: decimal.NewFromInt(40),
		Status:    BookingStatusPartial,
	}

	b.ApplyCancellation("customer request", decimal.NewFromInt(50), decimal.NewFromInt(30))

	if !b.RefundAmount.IsZero() {
		t.Errorf("expected no refund, got %s", b.RefundAmount)
	}

	// Customer still owes the difference up to the cancellation price.
	if !b.RemainingAmount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected remaining 40, got %s", b.RemainingAmount)
	}

	if !b.TotalPaid.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected total paid unchanged at 40, got %s", b.TotalPaid)
	}
}
