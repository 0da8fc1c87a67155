package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
	"github.com/iho/agencyledger/internal/usecase/mocks"
)

type cancellationFixture struct {
	bookingRepo  *mocks.MockBookingRepository
	treasuryRepo *mocks.MockTreasuryRepository
	uc           *usecase.CancellationUseCase
}

func newCancellationFixture() *cancellationFixture {
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	bookingRepo := mocks.NewMockBookingRepository()
	treasuryRepo := mocks.NewMockTreasuryRepository()

	treasury := usecase.NewTreasuryUseCase(txMgr, treasuryRepo, nil, idGen, nil)

	return &cancellationFixture{
		bookingRepo:  bookingRepo,
		treasuryRepo: treasuryRepo,
		uc:           usecase.NewCancellationUseCase(txMgr, bookingRepo, treasury, nil, idGen, nil),
	}
}

func (f *cancellationFixture) seed(sellPrice, totalPaid int64) *domain.Booking {
	booking := &domain.Booking{
		ID:             "bk-1",
		BookingNumber:  "TK-2002",
		CostPrice:      decimal.NewFromInt(sellPrice),
		SellPrice:      decimal.NewFromInt(sellPrice),
		InitialPayment: decimal.NewFromInt(totalPaid),
		TotalPaid:      decimal.NewFromInt(totalPaid),
		CreatedAt:      time.Now().UTC(),
	}
	booking.Recalculate()
	_ = f.bookingRepo.Create(context.Background(), nil, booking)
	return booking
}

func TestCancellationUseCase_CancelBooking(t *testing.T) {
	f := newCancellationFixture()
	f.seed(1000, 600)
	ctx := context.Background()

	booking, err := f.uc.CancelBooking(ctx, usecase.CancelBookingInput{
		BookingID:        "bk-1",
		Reason:           "flight cancelled by airline",
		CancelTax:        decimal.NewFromInt(50),
		CancelCommission: decimal.NewFromInt(30),
		Actor:            "op-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != domain.BookingStatusCancelled {
		t.Errorf("expected status cancelled, got %s", booking.Status)
	}
	if !booking.CostPrice.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected cost price 50, got %s", booking.CostPrice)
	}
	if !booking.SellPrice.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected sell price 80, got %s", booking.SellPrice)
	}
	if !booking.TotalPaid.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected total paid capped at 80, got %s", booking.TotalPaid)
	}
	if !booking.RefundAmount.Equal(decimal.NewFromInt(520)) {
		t.Errorf("expected refund 520, got %s", booking.RefundAmount)
	}
	if !booking.PriceBeforeCancel.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected price snapshot 1000, got %s", booking.PriceBeforeCancel)
	}

	// Cancellation is bookkeeping only; money moves at settlement.
	if entries := f.treasuryRepo.Entries(); len(entries) != 0 {
		t.Errorf("expected no ledger entries on cancel, got %d", len(entries))
	}
}

func TestCancellationUseCase_CancelBookingRejections(t *testing.T) {
	tests := []struct {
		name      string
		input     usecase.CancelBookingInput
		preCancel bool
		errorType error
	}{
		{
			name: "negative tax",
			input: usecase.CancelBookingInput{
				BookingID: "bk-1",
				CancelTax: decimal.NewFromInt(-1),
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "negative commission",
			input: usecase.CancelBookingInput{
				BookingID:        "bk-1",
				CancelCommission: decimal.NewFromInt(-1),
			},
			errorType: domain.ErrInvalidAmount,
		},
		{
			name: "unknown booking",
			input: usecase.CancelBookingInput{
				BookingID: "missing",
			},
			errorType: domain.ErrBookingNotFound,
		},
		{
			name: "already cancelled",
			input: usecase.CancelBookingInput{
				BookingID: "bk-1",
			},
			preCancel: true,
			errorType: domain.ErrAlreadyCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCancellationFixture()
			f.seed(1000, 600)
			ctx := context.Background()

			if tt.preCancel {
				if _, err := f.uc.CancelBooking(ctx, usecase.CancelBookingInput{BookingID: "bk-1"}); err != nil {
					t.Fatalf("setup cancel failed: %v", err)
				}
			}

			_, err := f.uc.CancelBooking(ctx, tt.input)
			if !errors.Is(err, tt.errorType) {
				t.Errorf("expected error %v, got %v", tt.errorType, err)
			}
		})
	}
}

func TestCancellationUseCase_SettleRefund(t *testing.T) {
	f := newCancellationFixture()
	f.seed(1000, 1000)
	ctx := context.Background()

	// Fully paid 1000, cancelled with 50 tax and 30 commission: the
	// customer is owed 920 back.
	if _, err := f.uc.CancelBooking(ctx, usecase.CancelBookingInput{
		BookingID:        "bk-1",
		CancelTax:        decimal.NewFromInt(50),
		CancelCommission: decimal.NewFromInt(30),
		Actor:            "op-1",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	booking, err := f.uc.SettleRefund(ctx, "bk-1", "op-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.RefundSettledAt == nil {
		t.Error("expected refund settled timestamp to be set")
	}

	entries := f.treasuryRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if !entries[0].SignedAmount().Equal(decimal.NewFromInt(-920)) {
		t.Errorf("expected -920 entry, got %s", entries[0].SignedAmount())
	}
	if entries[0].OriginKind != domain.OriginBooking || entries[0].OriginID != "bk-1" {
		t.Errorf("expected booking origin, got %s/%s", entries[0].OriginKind, entries[0].OriginID)
	}

	account, _ := f.treasuryRepo.GetAccount(ctx)
	if !account.Balance.Equal(decimal.NewFromInt(-920)) {
		t.Errorf("expected balance -920, got %s", account.Balance)
	}

	// Second settlement must fail and must not touch the ledger again.
	if _, err := f.uc.SettleRefund(ctx, "bk-1", "op-1"); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Errorf("expected ErrAlreadySettled, got %v", err)
	}
	if entries := f.treasuryRepo.Entries(); len(entries) != 1 {
		t.Errorf("expected ledger untouched on double settle, got %d entries", len(entries))
	}
}

func TestCancellationUseCase_SettleRefundRejections(t *testing.T) {
	t.Run("not cancelled", func(t *testing.T) {
		f := newCancellationFixture()
		f.seed(1000, 600)

		_, err := f.uc.SettleRefund(context.Background(), "bk-1", "op-1")
		if !errors.Is(err, domain.ErrNotCancelled) {
			t.Errorf("expected ErrNotCancelled, got %v", err)
		}
	})

	t.Run("nothing to refund", func(t *testing.T) {
		f := newCancellationFixture()
		f.seed(1000, 60)
		ctx := context.Background()

		// Paid 60 against a new price of 80: the customer still owes, no
		// refund exists.
		if _, err := f.uc.CancelBooking(ctx, usecase.CancelBookingInput{
			BookingID:        "bk-1",
			CancelTax:        decimal.NewFromInt(50),
			CancelCommission: decimal.NewFromInt(30),
		}); err != nil {
			t.Fatalf("cancel failed: %v", err)
		}

		_, err := f.uc.SettleRefund(ctx, "bk-1", "op-1")
		if !errors.Is(err, domain.ErrNothingToRefund) {
			t.Errorf("expected ErrNothingToRefund, got %v", err)
		}
	})
}
