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

var (
	// ErrInconsistentTreasury is returned when the stored balance does not
	// equal the signed sum of the entry history.
	ErrInconsistentTreasury = errors.New("treasury is inconsistent: balance does not match entry history")
)

// TreasuryUseCase is the single choke point for money movement. Every
// workflow that moves cash goes through ApplyEntryTx inside its own
// transaction, so the balance mutation and the history append commit (or
// roll back) together.
type TreasuryUseCase struct {
	txManager    TransactionManager
	treasuryRepo TreasuryRepository
	auditRepo    AuditRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	retrier      Retrier
}

// NewTreasuryUseCase creates a new TreasuryUseCase.
func NewTreasuryUseCase(
	txManager TransactionManager,
	treasuryRepo TreasuryRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *TreasuryUseCase {
	return &TreasuryUseCase{
		txManager:    txManager,
		treasuryRepo: treasuryRepo,
		auditRepo:    auditRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// WithRetrier makes ApplyEntry re-run the whole transaction when it
// loses a lock race on the treasury row.
func (uc *TreasuryUseCase) WithRetrier(retrier Retrier) *TreasuryUseCase {
	uc.retrier = retrier
	return uc
}

// ApplyEntryInput represents one signed ledger mutation.
type ApplyEntryInput struct {
	Delta       decimal.Decimal
	Description string
	OriginKind  domain.OriginKind
	OriginID    string
	Actor       string
}

// ApplyEntryTx applies a signed delta to the treasury inside the caller's
// open transaction: the singleton row is locked, the balance is updated
// with no clamping (negative balances are real overdraft), and an entry
// with the absolute amount is appended. There is no undo primitive;
// reversal is a second call with the negated delta.
func (uc *TreasuryUseCase) ApplyEntryTx(ctx context.Context, tx Transaction, input ApplyEntryInput) (*domain.TreasuryAccount, error) {
	if !input.OriginKind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrigin, input.OriginKind)
	}

	account, err := uc.treasuryRepo.GetAccountForUpdate(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	newBalance := account.Apply(input.Delta)

	actor := input.Actor
	if actor == "" {
		actor = domain.ActorFromContext(ctx)
	}

	entry := &domain.LedgerEntry{
		ID:           uc.idGen.Generate(),
		Amount:       input.Delta.Abs(),
		Direction:    domain.DirectionOf(input.Delta),
		Description:  input.Description,
		OriginKind:   input.OriginKind,
		OriginID:     input.OriginID,
		Actor:        actor,
		BalanceAfter: newBalance,
		CreatedAt:    now,
	}

	if err := uc.treasuryRepo.AppendEntry(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.treasuryRepo.UpdateBalance(ctx, tx, newBalance, now); err != nil {
		return nil, err
	}

	account.Balance = newBalance
	account.Version++
	account.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.LedgerEntries.WithLabelValues(string(entry.Direction), string(entry.OriginKind)).Inc()
		balance, _ := newBalance.Float64()
		uc.metrics.TreasuryBalance.Set(balance)
	}

	return account, nil
}

// ApplyEntry applies a signed delta in its own transaction. Used for
// direct treasury mutations that involve no other entity.
func (uc *TreasuryUseCase) ApplyEntry(ctx context.Context, input ApplyEntryInput) (*domain.TreasuryAccount, error) {
	var account *domain.TreasuryAccount

	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		account, err = uc.ApplyEntryTx(txCtx, tx, input)
		if err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, attempt)
	} else {
		err = attempt()
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordWorkflowError("apply_entry", err)
		}
		return nil, err
	}

	return account, nil
}

// MoveCashInput represents a manual deposit or withdrawal.
type MoveCashInput struct {
	Amount      decimal.Decimal
	Description string
	Actor       string
}

// Deposit records cash put into the till by hand.
func (uc *TreasuryUseCase) Deposit(ctx context.Context, input MoveCashInput) (*domain.TreasuryAccount, error) {
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.ApplyEntry(ctx, ApplyEntryInput{
		Delta:       input.Amount,
		Description: input.Description,
		OriginKind:  domain.OriginOther,
		Actor:       input.Actor,
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionTreasuryDeposit, input.Actor, domain.MarshalState(account))

	return account, nil
}

// Withdraw records cash taken out of the till by hand.
func (uc *TreasuryUseCase) Withdraw(ctx context.Context, input MoveCashInput) (*domain.TreasuryAccount, error) {
	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	account, err := uc.ApplyEntry(ctx, ApplyEntryInput{
		Delta:       input.Amount.Neg(),
		Description: input.Description,
		OriginKind:  domain.OriginOther,
		Actor:       input.Actor,
	})
	if err != nil {
		return nil, err
	}

	uc.audit(ctx, domain.AuditActionTreasuryWithdraw, input.Actor, domain.MarshalState(account))

	return account, nil
}

// GetAccount returns the treasury account.
func (uc *TreasuryUseCase) GetAccount(ctx context.Context) (*domain.TreasuryAccount, error) {
	return uc.treasuryRepo.GetAccount(ctx)
}

// ListEntriesInput represents input for listing ledger entries.
type ListEntriesInput struct {
	OriginKind domain.OriginKind
	OriginID   string
	Limit      int
	Offset     int
}

// ListEntries lists ledger entries, newest first, optionally filtered by
// origin.
func (uc *TreasuryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.LedgerEntry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	if input.OriginKind != "" {
		if !input.OriginKind.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOrigin, input.OriginKind)
		}

		return uc.treasuryRepo.ListEntriesByOrigin(ctx, input.OriginKind, input.OriginID, limit, offset)
	}

	return uc.treasuryRepo.ListEntries(ctx, limit, offset)
}

// ConsistencyReport is the result of replaying the entry history.
type ConsistencyReport struct {
	Balance      decimal.Decimal `json:"balance"`
	ReplayedSum  decimal.Decimal `json:"replayed_sum"`
	Difference   decimal.Decimal `json:"difference"`
	IsConsistent bool            `json:"is_consistent"`
	CheckedAt    time.Time       `json:"checked_at"`
}

// CheckConsistency verifies the replay invariant: the stored balance must
// equal the signed sum of all entries. Both reads run in one transaction
// with the treasury row locked, so an entry landing mid-check cannot be
// reported as drift. The transaction is read-only and always rolled back.
func (uc *TreasuryUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.treasuryRepo.GetAccountForUpdate(txCtx, tx)
	if err != nil {
		return nil, err
	}

	sum, err := uc.treasuryRepo.SumEntries(txCtx, tx)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		Balance:      account.Balance,
		ReplayedSum:  sum,
		Difference:   account.Balance.Sub(sum),
		IsConsistent: account.Balance.Equal(sum),
		CheckedAt:    time.Now().UTC(),
	}

	if !report.IsConsistent {
		return report, ErrInconsistentTreasury
	}

	return report, nil
}

func (uc *TreasuryUseCase) audit(ctx context.Context, action domain.AuditAction, actor string, after domain.JSON) {
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
		ResourceType: "treasury",
		ResourceID:   domain.TreasuryAccountID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
