package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
)

// IssuerUseCase manages issuers, payments to them, and the derived
// payable balance. What the agency owes an issuer is never stored: it is
// recomputed from booking cost prices and issuer payments on demand, with
// a short-lived cache in front of the read path.
type IssuerUseCase struct {
	txManager       TransactionManager
	issuerRepo      IssuerRepository
	issuerPayRepo   IssuerPaymentRepository
	bookingRepo     BookingRepository
	treasury        *TreasuryUseCase
	auditRepo       AuditRepository
	idGen           IDGenerator
	cache           Cache
	metrics         *metrics.Metrics
	balanceCacheTTL time.Duration
}

// NewIssuerUseCase creates a new IssuerUseCase.
func NewIssuerUseCase(
	txManager TransactionManager,
	issuerRepo IssuerRepository,
	issuerPayRepo IssuerPaymentRepository,
	bookingRepo BookingRepository,
	treasury *TreasuryUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	metrics *metrics.Metrics,
) *IssuerUseCase {
	return &IssuerUseCase{
		txManager:       txManager,
		issuerRepo:      issuerRepo,
		issuerPayRepo:   issuerPayRepo,
		bookingRepo:     bookingRepo,
		treasury:        treasury,
		auditRepo:       auditRepo,
		idGen:           idGen,
		cache:           cache,
		metrics:         metrics,
		balanceCacheTTL: IssuerBalanceCacheTTL,
	}
}

// CreateIssuerInput represents input for creating an issuer.
type CreateIssuerInput struct {
	Name    string
	Country string
	Actor   string
}

// CreateIssuer creates an issuer.
func (uc *IssuerUseCase) CreateIssuer(ctx context.Context, input CreateIssuerInput) (*domain.Issuer, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: issuer name is required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()

	issuer := &domain.Issuer{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Country:   input.Country,
		CreatedBy: input.Actor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.issuerRepo.Create(ctx, issuer); err != nil {
		return nil, err
	}

	return issuer, nil
}

// GetIssuer retrieves an issuer by ID.
func (uc *IssuerUseCase) GetIssuer(ctx context.Context, id string) (*domain.Issuer, error) {
	return uc.issuerRepo.GetByID(ctx, id)
}

// ListIssuers lists issuers.
func (uc *IssuerUseCase) ListIssuers(ctx context.Context, limit, offset int) ([]*domain.Issuer, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.issuerRepo.List(ctx, limit, offset)
}

// RecordIssuerPaymentInput represents input for paying an issuer.
type RecordIssuerPaymentInput struct {
	IssuerID      string
	Amount        decimal.Decimal
	Method        domain.PaymentMethod
	PaidAt        time.Time
	ReceiptNumber string
	Notes         string
	Actor         string
}

// RecordIssuerPayment pays an issuer out of the treasury. The payment is
// capped at the issuer's outstanding payable, computed under a row lock
// on the issuer so concurrent payments cannot both squeeze under the cap.
func (uc *IssuerUseCase) RecordIssuerPayment(ctx context.Context, input RecordIssuerPaymentInput) (*domain.IssuerPayment, error) {
	payment, err := uc.recordIssuerPayment(ctx, input)
	if err != nil && uc.metrics != nil {
		uc.metrics.RecordWorkflowError("issuer_payment", err)
	}
	return payment, err
}

func (uc *IssuerUseCase) recordIssuerPayment(ctx context.Context, input RecordIssuerPaymentInput) (*domain.IssuerPayment, error) {
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

	issuer, err := uc.issuerRepo.GetByIDForUpdate(txCtx, tx, input.IssuerID)
	if err != nil {
		return nil, err
	}

	owed, err := uc.bookingRepo.SumCostPriceByIssuer(txCtx, tx, issuer.ID)
	if err != nil {
		return nil, err
	}

	paid, err := uc.issuerPayRepo.SumAmountByIssuer(txCtx, tx, issuer.ID)
	if err != nil {
		return nil, err
	}

	outstanding := owed.Sub(paid)
	if input.Amount.GreaterThan(outstanding) {
		return nil, fmt.Errorf("%w: outstanding payable is %s", domain.ErrExceedsOwed, outstanding)
	}

	now := time.Now().UTC()

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	payment := &domain.IssuerPayment{
		ID:            uc.idGen.Generate(),
		IssuerID:      issuer.ID,
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

	if err := uc.issuerPayRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
		Delta:       input.Amount.Neg(),
		Description: fmt.Sprintf("payment to issuer %s", issuer.Name),
		OriginKind:  domain.OriginIssuerPayment,
		OriginID:    payment.ID,
		Actor:       input.Actor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.invalidateBalance(ctx, issuer.ID)

	if uc.metrics != nil {
		uc.metrics.IssuerPaymentsRecorded.Inc()
		uc.metrics.WorkflowDuration.WithLabelValues("issuer_payment").Observe(time.Since(start).Seconds())
	}

	uc.audit(ctx, domain.AuditActionIssuerPaymentCreate, input.Actor, payment.ID, domain.MarshalState(payment))

	return payment, nil
}

// ListIssuerPayments lists payments made to an issuer.
func (uc *IssuerUseCase) ListIssuerPayments(ctx context.Context, issuerID string, limit, offset int) ([]*domain.IssuerPayment, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.issuerPayRepo.ListByIssuer(ctx, issuerID, limit, offset)
}

// GetIssuerBalance returns the recomputed payable summary for an issuer.
// Reads go through the cache; any mutation on the issuer's payments
// invalidates it.
func (uc *IssuerUseCase) GetIssuerBalance(ctx context.Context, issuerID string) (*domain.IssuerBalance, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, balanceCacheKey(issuerID)); err == nil && cached != "" {
			var balance domain.IssuerBalance
			if err := json.Unmarshal([]byte(cached), &balance); err == nil {
				return &balance, nil
			}
		}
	}

	issuer, err := uc.issuerRepo.GetByID(ctx, issuerID)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	owed, err := uc.bookingRepo.SumCostPriceByIssuer(txCtx, tx, issuer.ID)
	if err != nil {
		return nil, err
	}

	paid, err := uc.issuerPayRepo.SumAmountByIssuer(txCtx, tx, issuer.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	balance := &domain.IssuerBalance{
		IssuerID:    issuer.ID,
		TotalOwed:   owed,
		TotalPaid:   paid,
		Outstanding: owed.Sub(paid),
	}

	if uc.cache != nil {
		if data, err := json.Marshal(balance); err == nil {
			_ = uc.cache.Set(ctx, balanceCacheKey(issuerID), string(data), uc.balanceCacheTTL)
		}
	}

	return balance, nil
}

func (uc *IssuerUseCase) invalidateBalance(ctx context.Context, issuerID string) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.Delete(ctx, balanceCacheKey(issuerID))
}

func balanceCacheKey(issuerID string) string {
	return "issuer_balance:" + issuerID
}

func (uc *IssuerUseCase) audit(ctx context.Context, action domain.AuditAction, actor, resourceID string, after domain.JSON) {
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
		ResourceType: "issuer_payment",
		ResourceID:   resourceID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
