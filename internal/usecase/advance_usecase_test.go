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

type advanceFixture struct {
	advanceRepo  *mocks.MockAdvanceRepository
	treasuryRepo *mocks.MockTreasuryRepository
	uc           *usecase.AdvanceUseCase
}

func newAdvanceFixture() *advanceFixture {
	txMgr := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	advanceRepo := mocks.NewMockAdvanceRepository()
	treasuryRepo := mocks.NewMockTreasuryRepository()

	treasury := usecase.NewTreasuryUseCase(txMgr, treasuryRepo, nil, idGen, nil)

	return &advanceFixture{
		advanceRepo:  advanceRepo,
		treasuryRepo: treasuryRepo,
		uc:           usecase.NewAdvanceUseCase(txMgr, advanceRepo, treasury, nil, idGen, nil),
	}
}

func TestAdvanceUseCase_Lifecycle(t *testing.T) {
	f := newAdvanceFixture()
	ctx := context.Background()

	advance, err := f.uc.RequestAdvance(ctx, usecase.RequestAdvanceInput{
		RequestedBy: "emp-1",
		Amount:      decimal.NewFromInt(200),
		Reason:      "rent due",
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if advance.Status != domain.AdvanceStatusPending {
		t.Errorf("expected pending, got %s", advance.Status)
	}
	if entries := f.treasuryRepo.Entries(); len(entries) != 0 {
		t.Errorf("expected no ledger entries on request, got %d", len(entries))
	}

	approved, err := f.uc.ApproveAdvance(ctx, advance.ID, "admin-1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if approved.Status != domain.AdvanceStatusApproved {
		t.Errorf("expected approved, got %s", approved.Status)
	}
	if approved.ApprovedAt == nil || approved.ApprovedBy != "admin-1" {
		t.Errorf("expected approval stamp, got %+v", approved)
	}

	entries := f.treasuryRepo.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(entries))
	}
	if !entries[0].SignedAmount().Equal(decimal.NewFromInt(-200)) {
		t.Errorf("expected -200 entry, got %s", entries[0].SignedAmount())
	}
	if entries[0].OriginKind != domain.OriginAdvance {
		t.Errorf("expected advance origin, got %s", entries[0].OriginKind)
	}

	// Approved advances are immutable.
	if _, err := f.uc.ApproveAdvance(ctx, advance.ID, "admin-1"); !errors.Is(err, domain.ErrAdvanceNotPending) {
		t.Errorf("expected ErrAdvanceNotPending on re-approve, got %v", err)
	}
	if err := f.uc.DeleteAdvance(ctx, advance.ID, "admin-1"); !errors.Is(err, domain.ErrAdvanceNotPending) {
		t.Errorf("expected ErrAdvanceNotPending on delete, got %v", err)
	}
	if entries := f.treasuryRepo.Entries(); len(entries) != 1 {
		t.Errorf("expected ledger untouched, got %d entries", len(entries))
	}
}

func TestAdvanceUseCase_Reject(t *testing.T) {
	f := newAdvanceFixture()
	ctx := context.Background()

	advance, err := f.uc.RequestAdvance(ctx, usecase.RequestAdvanceInput{
		RequestedBy: "emp-1",
		Amount:      decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	rejected, err := f.uc.RejectAdvance(ctx, advance.ID, "admin-1")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if rejected.Status != domain.AdvanceStatusRejected {
		t.Errorf("expected rejected, got %s", rejected.Status)
	}
	if entries := f.treasuryRepo.Entries(); len(entries) != 0 {
		t.Errorf("expected no ledger entries on reject, got %d", len(entries))
	}

	// A rejected advance stays as part of the decision record.
	if err := f.uc.DeleteAdvance(ctx, advance.ID, "admin-1"); !errors.Is(err, domain.ErrAdvanceNotPending) {
		t.Errorf("expected ErrAdvanceNotPending, got %v", err)
	}
}

func TestAdvanceUseCase_DeletePending(t *testing.T) {
	f := newAdvanceFixture()
	ctx := context.Background()

	advance, err := f.uc.RequestAdvance(ctx, usecase.RequestAdvanceInput{
		RequestedBy: "emp-1",
		Amount:      decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if err := f.uc.DeleteAdvance(ctx, advance.ID, "emp-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := f.uc.GetAdvance(ctx, advance.ID); !errors.Is(err, domain.ErrAdvanceNotFound) {
		t.Errorf("expected advance gone, got %v", err)
	}
}

func TestAdvanceUseCase_RequestValidation(t *testing.T) {
	f := newAdvanceFixture()

	_, err := f.uc.RequestAdvance(context.Background(), usecase.RequestAdvanceInput{
		RequestedBy: "emp-1",
		Amount:      decimal.NewFromInt(-10),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}
