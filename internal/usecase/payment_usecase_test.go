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

type paymentFixture struct {
	bookingRepo  *mocks.MockBookingRepository
	paymentRepo  *mocks.MockPaymentRepository
	treasuryRepo *mocks.MockTreasuryRepository
	uc           *usecase.PaymentUseCase
}

func newPaymentFixture() *paymentFixture {
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	bookingRepo := mocks.NewMockBookingRepository()
	paymentRepo := mocks.NewMockPaymentRepository()
	treasuryRepo := mocks.NewMockTreasuryRepository()

	treasury := usecase.NewTreasuryUseCase(txMgr, treasuryRepo, nil, idGen, nil)

	return &paymentFixture{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		treasuryRepo: treasuryRepo,
		uc:           usecase.NewPaymentUseCase(txMgr, bookingRepo, paymentRepo, treasury, nil, idGen, nil),
	}
}

func seedBooking(repo *mocks.MockBookingRepository, sellPrice, totalPaid int64) *domain.Booking {
	booking := &domain.Booking{
		ID:            "bk-1",
		BookingNumber: "TK-1001",
		SellPrice:     decimal.NewFromInt(sellPrice),
		TotalPaid:     decimal.NewFromInt(totalPaid),
		CreatedAt:     time.Now().UTC(),
	}
	booking.Recalculate()
	_ = repo.Create(context.Background(), nil, booking)
	return booking
}

func TestPaymentUseCase_AddPayment(t *testing.T) {
	tests := []struct {
		name        string
		sellPrice   int64
		totalPaid   int64
		amount      int64
		expectError bool
		errorType   error
		wantStatus  domain.BookingStatus
	}{
		{
			name:       "partial payment",
			sellPrice:  1000,
			totalPaid:  0,
			amount:     400,
			wantStatus: domain.BookingStatusPartial,
		},
		{
			name:       "exact remaining amount settles the booking",
			sellPrice:  1000,
			totalPaid:  400,
			amount:     600,
			wantStatus: domain.BookingStatusPaid,
		},
		{
			name:        "rejects amount above remaining",
			sellPrice:   1000,
			totalPaid:   400,
			amount:      601,
			expectError: true,
			errorType:   domain.ErrExceedsRemaining,
		},
		{
			name:        "rejects zero amount",
			sellPrice:   1000,
			totalPaid:   0,
			amount:      0,
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			// Once nothing is owed the cap no longer applies and any
			// further amount is accepted.
			name:       "fully paid booking accepts further payments",
			sellPrice:  1000,
			totalPaid:  1000,
			amount:     5000,
			wantStatus: domain.BookingStatusPaid,
		},
		{
			name:       "free booking accepts any payment",
			sellPrice:  0,
			totalPaid:  0,
			amount:     250,
			wantStatus: domain.BookingStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			seedBooking(f.bookingRepo, tt.sellPrice, tt.totalPaid)

			payment, err := f.uc.AddPayment(context.Background(), usecase.AddPaymentInput{
				BookingID: "bk-1",
				Amount:    decimal.NewFromInt(tt.amount),
				Method:    domain.MethodCash,
				Actor:     "op-1",
			})

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				if entries := f.treasuryRepo.Entries(); len(entries) != 0 {
					t.Errorf("expected no ledger entries on rejection, got %d", len(entries))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			booking, _ := f.bookingRepo.GetByID(context.Background(), "bk-1")
			wantPaid := decimal.NewFromInt(tt.totalPaid + tt.amount)
			if !booking.TotalPaid.Equal(wantPaid) {
				t.Errorf("expected total paid %s, got %s", wantPaid, booking.TotalPaid)
			}
			if booking.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, booking.Status)
			}

			entries := f.treasuryRepo.Entries()
			if len(entries) != 1 {
				t.Fatalf("expected 1 ledger entry, got %d", len(entries))
			}
			if entries[0].Direction != domain.DirectionIn {
				t.Errorf("expected direction in, got %s", entries[0].Direction)
			}
			if !entries[0].Amount.Equal(payment.Amount) {
				t.Errorf("expected entry amount %s, got %s", payment.Amount, entries[0].Amount)
			}
			if entries[0].OriginKind != domain.OriginBooking || entries[0].OriginID != "bk-1" {
				t.Errorf("expected booking origin, got %s/%s", entries[0].OriginKind, entries[0].OriginID)
			}
		})
	}
}

func TestPaymentUseCase_AddThenDeleteRoundTrip(t *testing.T) {
	f := newPaymentFixture()
	seedBooking(f.bookingRepo, 1000, 0)
	ctx := context.Background()

	payment, err := f.uc.AddPayment(ctx, usecase.AddPaymentInput{
		BookingID: "bk-1",
		Amount:    decimal.NewFromInt(400),
		Method:    domain.MethodCard,
		Actor:     "op-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.uc.DeletePayment(ctx, payment.ID, "op-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	booking, _ := f.bookingRepo.GetByID(ctx, "bk-1")
	if !booking.TotalPaid.IsZero() {
		t.Errorf("expected total paid 0 after round trip, got %s", booking.TotalPaid)
	}
	if booking.Status != domain.BookingStatusUnpaid {
		t.Errorf("expected status unpaid, got %s", booking.Status)
	}
	if !booking.RemainingAmount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected remaining 1000, got %s", booking.RemainingAmount)
	}

	account, _ := f.treasuryRepo.GetAccount(ctx)
	if !account.Balance.IsZero() {
		t.Errorf("expected balance 0 after round trip, got %s", account.Balance)
	}

	// Both movements stay in the history; deletion reverses, it does not
	// erase.
	if entries := f.treasuryRepo.Entries(); len(entries) != 2 {
		t.Errorf("expected 2 ledger entries, got %d", len(entries))
	}

	if _, err := f.paymentRepo.GetByID(ctx, payment.ID); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("expected payment to be gone, got %v", err)
	}
}

func TestPaymentUseCase_DeletePaymentClampsAtZero(t *testing.T) {
	f := newPaymentFixture()
	booking := seedBooking(f.bookingRepo, 1000, 100)
	ctx := context.Background()

	// A payment larger than the booking's recorded total, as can happen
	// after historical data fixes.
	payment := &domain.Payment{
		ID:        "pay-1",
		BookingID: booking.ID,
		Amount:    decimal.NewFromInt(300),
		Method:    domain.MethodCash,
		PaidAt:    time.Now().UTC(),
	}
	_ = f.paymentRepo.Create(ctx, nil, payment)

	if err := f.uc.DeletePayment(ctx, "pay-1", "op-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := f.bookingRepo.GetByID(ctx, booking.ID)
	if !got.TotalPaid.IsZero() {
		t.Errorf("expected total paid clamped to 0, got %s", got.TotalPaid)
	}

	// The ledger reversal still moves the full payment amount.
	entries := f.treasuryRepo.Entries()
	if len(entries) != 1 || !entries[0].SignedAmount().Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected single -300 entry, got %+v", entries)
	}
}

func TestPaymentUseCase_DeleteOrphanPayment(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	payment := &domain.Payment{
		ID:        "pay-orphan",
		BookingID: "gone",
		Amount:    decimal.NewFromInt(50),
		Method:    domain.MethodCash,
		PaidAt:    time.Now().UTC(),
	}
	_ = f.paymentRepo.Create(ctx, nil, payment)

	if err := f.uc.DeletePayment(ctx, "pay-orphan", "op-1"); err != nil {
		t.Fatalf("expected orphan delete to succeed, got %v", err)
	}

	if entries := f.treasuryRepo.Entries(); len(entries) != 0 {
		t.Errorf("expected no ledger entries for orphan delete, got %d", len(entries))
	}
}
