package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
)

// AdvanceUseCase manages employee cash advances. Requesting and rejecting
// are bookkeeping only; approval is the single step that pays cash out of
// the treasury.
type AdvanceUseCase struct {
	txManager   TransactionManager
	advanceRepo AdvanceRepository
	treasury    *TreasuryUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAdvanceUseCase creates a new AdvanceUseCase.
func NewAdvanceUseCase(
	txManager TransactionManager,
	advanceRepo AdvanceRepository,
	treasury *TreasuryUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *AdvanceUseCase {
	return &AdvanceUseCase{
		txManager:   txManager,
		advanceRepo: advanceRepo,
		treasury:    treasury,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// RequestAdvanceInput represents input for requesting an advance.
type RequestAdvanceInput struct {
	RequestedBy string
	Amount      decimal.Decimal
	Reason      string
}

// RequestAdvance creates a pending advance. No money moves until it is
// approved.
func (uc *AdvanceUseCase) RequestAdvance(ctx context.Context, input RequestAdvanceInput) (*domain.Advance, error) {
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	advance := &domain.Advance{
		ID:          uc.idGen.Generate(),
		RequestedBy: input.RequestedBy,
		Amount:      input.Amount,
		Reason:      input.Reason,
		Status:      domain.AdvanceStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := advance.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.advanceRepo.Create(txCtx, tx, advance); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionAdvanceRequest, input.RequestedBy, advance.ID, nil, domain.MarshalState(advance))

	return advance, nil
}

// ApproveAdvance approves a pending advance and pays it out of the
// treasury in the same transaction.
func (uc *AdvanceUseCase) ApproveAdvance(ctx context.Context, advanceID, approver string) (*domain.Advance, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	advance, err := uc.advanceRepo.GetByIDForUpdate(txCtx, tx, advanceID)
	if err != nil {
		return nil, err
	}

	if !advance.Pending() {
		return nil, domain.ErrAdvanceNotPending
	}

	before := domain.MarshalState(advance)
	now := time.Now().UTC()

	advance.Status = domain.AdvanceStatusApproved
	advance.ApprovedBy = approver
	advance.ApprovedAt = &now
	advance.UpdatedAt = now

	if err := uc.advanceRepo.Update(txCtx, tx, advance); err != nil {
		return nil, err
	}

	_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
		Delta:       advance.Amount.Neg(),
		Description: fmt.Sprintf("advance approved for %s", advance.RequestedBy),
		OriginKind:  domain.OriginAdvance,
		OriginID:    advance.ID,
		Actor:       approver,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AdvancesApproved.Inc()
	}

	uc.audit(ctx, domain.AuditActionAdvanceApprove, approver, advance.ID, before, domain.MarshalState(advance))

	return advance, nil
}

// RejectAdvance rejects a pending advance. Nothing is paid out.
func (uc *AdvanceUseCase) RejectAdvance(ctx context.Context, advanceID, approver string) (*domain.Advance, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	advance, err := uc.advanceRepo.GetByIDForUpdate(txCtx, tx, advanceID)
	if err != nil {
		return nil, err
	}

	if !advance.Pending() {
		return nil, domain.ErrAdvanceNotPending
	}

	before := domain.MarshalState(advance)

	advance.Status = domain.AdvanceStatusRejected
	advance.ApprovedBy = approver
	advance.UpdatedAt = time.Now().UTC()

	if err := uc.advanceRepo.Update(txCtx, tx, advance); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionAdvanceReject, approver, advance.ID, before, domain.MarshalState(advance))

	return advance, nil
}

// DeleteAdvance removes a pending advance. Approved advances already paid
// cash and rejected ones are part of the decision record, so neither may
// be deleted.
func (uc *AdvanceUseCase) DeleteAdvance(ctx context.Context, advanceID, actor string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	advance, err := uc.advanceRepo.GetByIDForUpdate(txCtx, tx, advanceID)
	if err != nil {
		return err
	}

	if !advance.Pending() {
		return domain.ErrAdvanceNotPending
	}

	if err := uc.advanceRepo.Delete(txCtx, tx, advanceID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.audit(ctx, domain.AuditActionAdvanceDelete, actor, advanceID, domain.MarshalState(advance), nil)

	return nil
}

// GetAdvance retrieves an advance by ID.
func (uc *AdvanceUseCase) GetAdvance(ctx context.Context, id string) (*domain.Advance, error) {
	return uc.advanceRepo.GetByID(ctx, id)
}

// ListAdvances lists advances.
func (uc *AdvanceUseCase) ListAdvances(ctx context.Context, limit, offset int) ([]*domain.Advance, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.advanceRepo.List(ctx, limit, offset)
}

func (uc *AdvanceUseCase) audit(ctx context.Context, action domain.AuditAction, actor, resourceID string, before, after domain.JSON) {
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
		ResourceType: "advance",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
