package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/metrics"
)

// ExpenseUseCase manages operational expenses. Every expense mutation is
// mirrored in the treasury: creating one takes cash out, amending one
// applies only the difference, deleting one puts the cash back.
type ExpenseUseCase struct {
	txManager   TransactionManager
	expenseRepo ExpenseRepository
	treasury    *TreasuryUseCase
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	expenseRepo ExpenseRepository,
	treasury *TreasuryUseCase,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		expenseRepo: expenseRepo,
		treasury:    treasury,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateExpenseInput represents input for recording an expense.
type CreateExpenseInput struct {
	Title    string
	Amount   decimal.Decimal
	Category string
	SpentAt  time.Time
	Notes    string
	Actor    string
}

// CreateExpense records an expense and debits the treasury.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	spentAt := input.SpentAt
	if spentAt.IsZero() {
		spentAt = now
	}

	expense := &domain.Expense{
		ID:        uc.idGen.Generate(),
		Title:     input.Title,
		Amount:    input.Amount,
		Category:  input.Category,
		SpentAt:   spentAt,
		Notes:     input.Notes,
		CreatedBy: input.Actor,
		UpdatedBy: input.Actor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.expenseRepo.Create(txCtx, tx, expense); err != nil {
		return nil, err
	}

	_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
		Delta:       input.Amount.Neg(),
		Description: fmt.Sprintf("expense: %s", expense.Title),
		OriginKind:  domain.OriginExpense,
		OriginID:    expense.ID,
		Actor:       input.Actor,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ExpensesRecorded.Inc()
	}

	uc.audit(ctx, domain.AuditActionExpenseCreate, input.Actor, expense.ID, nil, domain.MarshalState(expense))

	return expense, nil
}

// UpdateExpenseInput represents input for amending an expense.
type UpdateExpenseInput struct {
	ExpenseID string
	Title     string
	Amount    decimal.Decimal
	Category  string
	SpentAt   time.Time
	Notes     string
	Actor     string
}

// UpdateExpense amends an expense. Only the amount difference moves
// money: raising an expense debits the extra, lowering it credits the
// difference back. An unchanged amount writes no ledger entry at all.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.Expense, error) {
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

	expense, err := uc.expenseRepo.GetByIDForUpdate(txCtx, tx, input.ExpenseID)
	if err != nil {
		return nil, err
	}

	before := domain.MarshalState(expense)
	delta := expense.Amount.Sub(input.Amount)

	expense.Title = input.Title
	expense.Amount = input.Amount
	expense.Category = input.Category
	expense.Notes = input.Notes
	if !input.SpentAt.IsZero() {
		expense.SpentAt = input.SpentAt
	}
	expense.UpdatedBy = input.Actor
	expense.UpdatedAt = time.Now().UTC()

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := uc.expenseRepo.Update(txCtx, tx, expense); err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
			Delta:       delta,
			Description: fmt.Sprintf("expense amended: %s", expense.Title),
			OriginKind:  domain.OriginExpense,
			OriginID:    expense.ID,
			Actor:       input.Actor,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionExpenseUpdate, input.Actor, expense.ID, before, domain.MarshalState(expense))

	return expense, nil
}

// DeleteExpense removes an expense and credits its amount back to the
// treasury.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, expenseID, actor string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	expense, err := uc.expenseRepo.GetByIDForUpdate(txCtx, tx, expenseID)
	if err != nil {
		return err
	}

	_, err = uc.treasury.ApplyEntryTx(txCtx, tx, ApplyEntryInput{
		Delta:       expense.Amount,
		Description: fmt.Sprintf("expense deleted: %s", expense.Title),
		OriginKind:  domain.OriginExpense,
		OriginID:    expense.ID,
		Actor:       actor,
	})
	if err != nil {
		return err
	}

	if err := uc.expenseRepo.Delete(txCtx, tx, expenseID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	uc.audit(ctx, domain.AuditActionExpenseDelete, actor, expenseID, domain.MarshalState(expense), nil)

	return nil
}

// GetExpense retrieves an expense by ID.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return uc.expenseRepo.GetByID(ctx, id)
}

// ListExpenses lists expenses.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, limit, offset int) ([]*domain.Expense, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.expenseRepo.List(ctx, limit, offset)
}

func (uc *ExpenseUseCase) audit(ctx context.Context, action domain.AuditAction, actor, resourceID string, before, after domain.JSON) {
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
		ResourceType: "expense",
		ResourceID:   resourceID,
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
