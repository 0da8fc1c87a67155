package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
)

// CancellationUseCase drives the two-phase cancellation state machine:
// cancel reprices the booking and freezes it, settle pays the refund out
// of the till. The split exists because the cash may leave the register
// hours or days after the cancellation is recorded, or never; the ledger
// must not be debited until an operator confirms the money moved.
type CancellationUseCase struct {
	txManager   TransactionManager
	bookingRepo BookingRepository
	treasury    *TreasuryUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewCancellationUseCase creates a new CancellationUseCase.
func NewCancellationUseCase(
	txManager TransactionManager,
	bookingRepo BookingRepository,
	treasury *TreasuryUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *CancellationUseCase {
	return &CancellationUseCase{
		txManager:   txManager,
		bookingRepo: bookingRepo,
		treasury:    treasury,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CancelBookingInput represents input for cancelling a booking.
type CancelBookingInput struct {
	BookingID        string
	Reason           string
	CancelTax        decimal.Decimal
	CancelCommission decimal.Decimal
	Actor            string
}

// CancelBooking reprices a booking at cancellation time. No money moves
// here: the refund owed (if any) is recorded on the booking and settled
// separately.
func (uc *CancellationUseCase) CancelBooking(ctx context.Context, input CancelBookingInput) (*domain.Booking, error) {
	booking, err := uc.cancelBooking(ctx, input)
	if err != nil && uc.metrics != nil {
		uc.metrics.RecordWorkflowError("cancel_booking", err)
	}
	return booking, err
}

func (uc *CancellationUseCase) cancelBooking(ctx context.Context, input CancelBookingInput) (*domain.Booking, error) {
	if err := domain.ValidateNonNegativeAmount(input.CancelTax); err != nil {
		return nil, err
	}

	if err := domain.ValidateNonNegativeAmount(input.CancelCommission); err != nil {
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

	if booking.Cancelled() {
		return nil, domain.ErrAlreadyCancelled
	}

	before := domain.MarshalState(booking)

	booking.ApplyCancellation(input.Reason, input.CancelTax, input.CancelCommission)
	booking.UpdatedBy = input.Actor
	booking.UpdatedAt = time.Now().UTC()

	if err := uc.bookingRepo.Update(txCtx, tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.BookingsCancelled.Inc()
	}

	uc.audit(ctx, domain.AuditActionBookingCancel, input.Actor, booking.ID, before, domain.MarshalState(booking))

	return booking, nil
}

// SettleRefund debits the treasury by the booking's refund amount,
// exactly once. The booking must be cancelled, owe a refund, and not have
// been settled before.
func (uc *CancellationUseCase) SettleRefund(ctx context.Context, bookingID, actor string) (*domain.Booking, error) {
	booking, err := uc.settleRefund(ctx, bookingID, actor)
	if err != nil && uc.metrics != nil {
		uc.metrics.RecordWorkflowError("settle_refund", err)
	}
	return booking, err
}

func (uc *CancellationUseCase) settleRefund(ctx context.Context, bookingID, actor string) (*domain.Booking, error) {
	start := time.Now()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	booking, err := uc.bookingRepo.GetByIDForUpdate(txCtx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Cancelled() {
		return nil, domain.ErrNotCancelled
	}

	if booking.RefundAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrNothingToRefund
	}

	if booking.RefundSettledAt != nil {
		return nil, domain.ErrAlreadySettled
	}

	_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
		Delta:       booking.RefundAmount.Neg(),
		Description: fmt.Sprintf("refund for cancelled booking %s", booking.BookingNumber),
		OriginKind:  domain.OriginBooking,
		OriginID:    booking.ID,
		Actor:       actor,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking.RefundSettledAt = &now
	booking.UpdatedBy = actor
	booking.UpdatedAt = now

	if err := uc.bookingRepo.Update(txCtx, tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RefundsSettled.Inc()
		amount, _ := booking.RefundAmount.Float64()
		uc.metrics.RefundAmount.Observe(amount)
		uc.metrics.WorkflowDuration.WithLabelValues("settle_refund").Observe(time.Since(start).Seconds())
	}

	uc.audit(ctx, domain.AuditActionRefundSettle, actor, booking.ID, nil, domain.MarshalState(booking))

	return booking, nil
}

func (uc *CancellationUseCase) audit(ctx context.Context, action domain.AuditAction, actor, resourceID string, before, after domain.JSON) {
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
		ResourceType: "booking",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
