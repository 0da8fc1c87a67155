package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
	"github.com/iho/agencyledger/internal/usecase/mocks"
)

type bookingFixture struct {
	bookingRepo  *mocks.MockBookingRepository
	treasuryRepo *mocks.MockTreasuryRepository
	uc           *usecase.BookingUseCase
}

func newBookingFixture() *bookingFixture {
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	bookingRepo := mocks.NewMockBookingRepository()
	treasuryRepo := mocks.NewMockTreasuryRepository()

	treasury := usecase.NewTreasuryUseCase(txMgr, treasuryRepo, nil, idGen, nil)

	return &bookingFixture{
		bookingRepo:  bookingRepo,
		treasuryRepo: treasuryRepo,
		uc:           usecase.NewBookingUseCase(txMgr, bookingRepo, treasury, nil, idGen, nil),
	}
}

func TestBookingUseCase_CreateBooking(t *testing.T) {
	tests := []struct {
		name           string
		input          usecase.CreateBookingInput
		expectError    bool
		errorType      error
		wantStatus     domain.BookingStatus
		wantRemaining  int64
		wantLedgerSum  int64
		wantEntryCount int
	}{
		{
			name: "unpaid booking moves no money",
			input: usecase.CreateBookingInput{
				BookingNumber: "TK-1",
				CostPrice:     decimal.NewFromInt(700),
				SellPrice:     decimal.NewFromInt(1000),
			},
			wantStatus:     domain.BookingStatusUnpaid,
			wantRemaining:  1000,
			wantEntryCount: 0,
		},
		{
			name: "initial payment credits the treasury",
			input: usecase.CreateBookingInput{
				BookingNumber:  "TK-2",
				CostPrice:      decimal.NewFromInt(700),
				SellPrice:      decimal.NewFromInt(1000),
				InitialPayment: decimal.NewFromInt(300),
			},
			wantStatus:     domain.BookingStatusPartial,
			wantRemaining:  700,
			wantLedgerSum:  300,
			wantEntryCount: 1,
		},
		{
			name: "fully paid up front",
			input: usecase.CreateBookingInput{
				BookingNumber:  "TK-3",
				SellPrice:      decimal.NewFromInt(500),
				InitialPayment: decimal.NewFromInt(500),
			},
			wantStatus:     domain.BookingStatusPaid,
			wantRemaining:  0,
			wantLedgerSum:  500,
			wantEntryCount: 1,
		},
		{
			name: "empty booking number rejected",
			input: usecase.CreateBookingInput{
				SellPrice: decimal.NewFromInt(100),
			},
			expectError: true,
			errorType:   domain.ErrInvalidBookingNumber,
		},
		{
			name: "negative initial payment rejected",
			input: usecase.CreateBookingInput{
				BookingNumber:  "TK-4",
				SellPrice:      decimal.NewFromInt(100),
				InitialPayment: decimal.NewFromInt(-1),
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()

			booking, err := f.uc.CreateBooking(context.Background(), tt.input)

			if tt.expectError {
				if !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if booking.Status != tt.wantStatus {
				t.Errorf("expected status %s, got %s", tt.wantStatus, booking.Status)
			}
			if !booking.RemainingAmount.Equal(decimal.NewFromInt(tt.wantRemaining)) {
				t.Errorf("expected remaining %d, got %s", tt.wantRemaining, booking.RemainingAmount)
			}
			if !booking.TotalPaid.Equal(tt.input.InitialPayment) {
				t.Errorf("expected total paid %s, got %s", tt.input.InitialPayment, booking.TotalPaid)
			}

			entries := f.treasuryRepo.Entries()
			if len(entries) != tt.wantEntryCount {
				t.Fatalf("expected %d entries, got %d", tt.wantEntryCount, len(entries))
			}

			account, _ := f.treasuryRepo.GetAccount(context.Background())
			if !account.Balance.Equal(decimal.NewFromInt(tt.wantLedgerSum)) {
				t.Errorf("expected balance %d, got %s", tt.wantLedgerSum, account.Balance)
			}
		})
	}
}

func TestBookingUseCase_CreateBookingRepeatedNumber(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	input := usecase.CreateBookingInput{
		BookingNumber: "TK-7",
		CostPrice:     decimal.NewFromInt(300),
		SellPrice:     decimal.NewFromInt(400),
	}

	first, err := f.uc.CreateBooking(ctx, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Booking numbers are free text and repeat in practice; only length
	// is validated, never uniqueness.
	second, err := f.uc.CreateBooking(ctx, input)
	if err != nil {
		t.Fatalf("expected repeated booking number to be accepted, got %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("expected distinct bookings, both got id %s", first.ID)
	}
	if second.BookingNumber != "TK-7" {
		t.Errorf("expected booking number TK-7, got %s", second.BookingNumber)
	}
}
