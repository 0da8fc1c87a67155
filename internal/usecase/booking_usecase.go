package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
)

// BookingUseCase handles booking creation and reads.
type BookingUseCase struct {
	txManager   TransactionManager
	bookingRepo BookingRepository
	treasury    *TreasuryUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewBookingUseCase creates a new BookingUseCase.
func NewBookingUseCase(
	txManager TransactionManager,
	bookingRepo BookingRepository,
	treasury *TreasuryUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *BookingUseCase {
	return &BookingUseCase{
		txManager:   txManager,
		bookingRepo: bookingRepo,
		treasury:    treasury,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateBookingInput represents input for creating a booking.
type CreateBookingInput struct {
	BookingNumber  string
	CustomerID     string
	IssuerID       string
	Airport        string
	Country        string
	DepartureDate  time.Time
	CostPrice      decimal.Decimal
	SellPrice      decimal.Decimal
	InitialPayment decimal.Decimal
	Actor          string
}

// CreateBooking creates a booking. A non-zero initial payment is cash
// received at the counter, so it both seeds the paid total and credits
// the treasury in the same transaction.
func (uc *BookingUseCase) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := domain.ValidateBookingNumber(input.BookingNumber); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	booking := &domain.Booking{
		ID:             uc.idGen.Generate(),
		BookingNumber:  input.BookingNumber,
		CustomerID:     input.CustomerID,
		IssuerID:       input.IssuerID,
		Airport:        input.Airport,
		Country:        input.Country,
		DepartureDate:  input.DepartureDate,
		CostPrice:      input.CostPrice,
		SellPrice:      input.SellPrice,
		InitialPayment: input.InitialPayment,
		TotalPaid:      input.InitialPayment,
		CreatedBy:      input.Actor,
		UpdatedBy:      input.Actor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := booking.Validate(); err != nil {
		return nil, err
	}

	booking.Recalculate()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.bookingRepo.Create(txCtx, tx, booking); err != nil {
		return nil, err
	}

	if booking.InitialPayment.IsPositive() {
		_, err := uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
			Delta:       booking.InitialPayment,
			Description: fmt.Sprintf("initial payment for booking %s", booking.BookingNumber),
			OriginKind:  domain.OriginBooking,
			OriginID:    booking.ID,
			Actor:       input.Actor,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BookingsCreated.Inc()
	}

	if uc.auditRepo != nil {
		_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			UserID:       input.Actor,
			Action:       string(domain.AuditActionBookingCreate),
			ResourceType: "booking",
			ResourceID:   booking.ID,
			AfterState:   domain.MarshalState(booking),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    time.Now().UTC(),
		})
	}

	return booking, nil
}

// GetBooking retrieves a booking by ID.
func (uc *BookingUseCase) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return uc.bookingRepo.GetByID(ctx, id)
}

// ListBookingsInput represents input for listing bookings.
type ListBookingsInput struct {
	IssuerID string
	Limit    int
	Offset   int
}

// ListBookings lists bookings, optionally filtered by issuer.
func (uc *BookingUseCase) ListBookings(ctx context.Context, input ListBookingsInput) ([]*domain.Booking, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	if input.IssuerID != "" {
		return uc.bookingRepo.ListByIssuer(ctx, input.IssuerID, limit, offset)
	}

	return uc.bookingRepo.List(ctx, limit, offset)
}
