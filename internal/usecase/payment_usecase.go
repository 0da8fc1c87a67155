package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
)

// PaymentUseCase handles customer payments against bookings. Adding or
// deleting a payment keeps the booking totals and the treasury in step:
// payment row, booking recompute, and ledger entry commit as one unit.
type PaymentUseCase struct {
	txManager   TransactionManager
	bookingRepo BookingRepository
	paymentRepo PaymentRepository
	treasury    *TreasuryUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	bookingRepo BookingRepository,
	paymentRepo PaymentRepository,
	treasury *TreasuryUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		treasury:    treasury,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// AddPaymentInput represents input for recording a payment.
type AddPaymentInput struct {
	BookingID     string
	Amount        decimal.Decimal
	Method        domain.PaymentMethod
	PaidAt        time.Time
	ReceiptNumber string
	Notes         string
	Actor         string
}

// AddPayment records a payment against a booking.
//
// The exceeds-remaining check only applies while something is still owed:
// once remaining is zero the booking accepts any further positive amount.
// That quirk is long-standing observed behavior and is covered by tests;
// do not tighten it without a product decision.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, input AddPaymentInput) (*domain.Payment, error) {
	payment, err := uc.addPayment(ctx, input)
	if err != nil && uc.metrics != nil {
		uc.metrics.RecordWorkflowError("add_payment", err)
	}
	return payment, err
}

func (uc *PaymentUseCase) addPayment(ctx context.Context, input AddPaymentInput) (*domain.Payment, error) {
	start := time.Now()

	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, tx, input.BookingID)
	if err != nil {
		return nil, err
	}

	if booking.RemainingAmount.IsPositive() && input.Amount.GreaterThan(booking.RemainingAmount) {
		return nil, fmt.Errorf("%w: remaining amount is %s", domain.ErrExceedsRemaining, booking.RemainingAmount)
	}

	now := time.Now().UTC()

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	payment := &domain.Payment{
		ID:            uc.idGen.Generate(),
		BookingID:     booking.ID,
		Amount:        input.Amount,
		Method:        input.Method,
		PaidAt:        paidAt,
		ReceiptNumber: input.ReceiptNumber,
		Notes:         input.Notes,
		CreatedBy:     input.Actor,
		CreatedAt:     now,
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	booking.TotalPaid = booking.TotalPaid.Add(input.Amount)
	booking.Recalculate()
	booking.UpdatedBy = input.Actor
	booking.UpdatedAt = now

	if err := uc.bookingRepo.Update(txCtx, tx, booking); err != nil {
		return nil, err
	}

	_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
		Delta:       input.Amount,
		Description: fmt.Sprintf("payment received for booking %s", booking.BookingNumber),
		OriginKind:  domain.OriginBooking,
		OriginID:    booking.ID,
		Actor:       input.Actor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.Inc()
		amount, _ := input.Amount.Float64()
		uc.metrics.PaymentAmount.Observe(amount)
		uc.metrics.WorkflowDuration.WithLabelValues("add_payment").Observe(time.Since(start).Seconds())
	}

	uc.audit(ctx, domain.AuditActionPaymentCreate, input.Actor, payment.ID, nil, domain.MarshalState(payment))

	return payment, nil
}

// DeletePayment removes a payment and reverses its effect on the booking
// and the treasury. A payment whose booking has disappeared is tolerated:
// the row is deleted and the booking/ledger steps are skipped.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, paymentID, actor string) error {
	err := uc.deletePayment(ctx, paymentID, actor)
	if err != nil && uc.metrics != nil {
		uc.metrics.RecordWorkflowError("delete_payment", err)
	}
	return err
}

func (uc *PaymentUseCase) deletePayment(ctx context.Context, paymentID, actor string) error {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	payment, err := uc.paymentRepo.GetByIDForUpdate(txCtx, tx, paymentID)
	if err != nil {
		return err
	}

	booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, tx, payment.BookingID)
	if err != nil && !errors.Is(err, domain.ErrBookingNotFound) {
		return err
	}

	now := time.Now().UTC()

	if booking != nil {
		booking.TotalPaid = booking.TotalPaid.Sub(payment.Amount)
		if booking.TotalPaid.IsNegative() {
			booking.TotalPaid = decimal.Zero
		}
		booking.Recalculate()
		booking.UpdatedBy = actor
		booking.UpdatedAt = now

		if err := uc.bookingRepo.Update(txCtx, tx, booking); err != nil {
			return err
		}

		_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
			Delta:       payment.Amount.Neg(),
			Description: fmt.Sprintf("payment %s deleted, reversal for booking %s", payment.ID, booking.BookingNumber),
			OriginKind:  domain.OriginBooking,
			OriginID:    booking.ID,
			Actor:       actor,
		})
		if err != nil {
			return err
		}
	}

	if err := uc.paymentRepo.Delete(txCtx, tx, paymentID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsDeleted.Inc()
		uc.metrics.WorkflowDuration.WithLabelValues("delete_payment").Observe(time.Since(start).Seconds())
	}

	uc.audit(ctx, domain.AuditActionPaymentDelete, actor, paymentID, domain.MarshalState(payment), nil)

	return nil
}

// GetPayment retrieves a payment by ID.
func (uc *PaymentUseCase) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return uc.paymentRepo.GetByID(ctx, id)
}

// ListPaymentsByBookingInput represents input for listing payments.
type ListPaymentsByBookingInput struct {
	BookingID string
	Limit     int
	Offset    int
}

// ListPaymentsByBooking lists payments for a booking.
func (uc *PaymentUseCase) ListPaymentsByBooking(ctx context.Context, input ListPaymentsByBookingInput) ([]*domain.Payment, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.paymentRepo.ListByBooking(ctx, input.BookingID, limit, offset)
}

func (uc *PaymentUseCase) audit(ctx context.Context, action domain.AuditAction, actor, resourceID string, before, after domain.JSON) {
	if uc.auditRepo == nil {
		return
	}

	if actor == "" {
		actor = domain.ActorFromContext(ctx)
	}

	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       actor,
		Action:       string(action),
		ResourceType: "payment",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
