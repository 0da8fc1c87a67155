package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/adapter/http/dto"
	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

type treasuryServiceStub struct {
	getFn         func(ctx context.Context) (*domain.TreasuryAccount, error)
	depositFn     func(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error)
	withdrawFn    func(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error)
	listFn        func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
	consistencyFn func(ctx context.Context) (*usecase.ConsistencyReport, error)
}

func (s *treasuryServiceStub) GetAccount(ctx context.Context) (*domain.TreasuryAccount, error) {
	return s.getFn(ctx)
}

func (s *treasuryServiceStub) Deposit(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error) {
	return s.depositFn(ctx, input)
}

func (s *treasuryServiceStub) Withdraw(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error) {
	return s.withdrawFn(ctx, input)
}

func (s *treasuryServiceStub) ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error) {
	return s.listFn(ctx, input)
}

func (s *treasuryServiceStub) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return s.consistencyFn(ctx)
}

func TestTreasuryHandler_Get(t *testing.T) {
	h := NewTreasuryHandler(&treasuryServiceStub{
		getFn: func(ctx context.Context) (*domain.TreasuryAccount, error) {
			return &domain.TreasuryAccount{
				ID:      domain.TreasuryAccountID,
				Balance: decimal.NewFromInt(-283),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/treasury", nil)
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.TreasuryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Balance.Equal(decimal.NewFromInt(-283)) {
		t.Fatalf("expected balance -283, got %s", resp.Balance)
	}
}

func TestTreasuryHandler_Deposit(t *testing.T) {
	var captured usecase.MoveCashInput
	h := NewTreasuryHandler(&treasuryServiceStub{
		depositFn: func(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error) {
			captured = input
			return &domain.TreasuryAccount{Balance: input.Amount}, nil
		},
	})

	body, _ := json.Marshal(dto.MoveCashRequest{
		Amount:      decimal.NewFromInt(500),
		Description: "opening float",
	})

	req := httptest.NewRequest(http.MethodPost, "/treasury/deposit", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !captured.Amount.Equal(decimal.NewFromInt(500)) || captured.Description != "opening float" {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestTreasuryHandler_Withdraw_InvalidAmount(t *testing.T) {
	h := NewTreasuryHandler(&treasuryServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error) {
			return nil, domain.ErrInvalidAmount
		},
	})

	body, _ := json.Marshal(dto.MoveCashRequest{Amount: decimal.Zero})
	req := httptest.NewRequest(http.MethodPost, "/treasury/withdraw", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTreasuryHandler_ListEntries(t *testing.T) {
	h := NewTreasuryHandler(&treasuryServiceStub{
		listFn: func(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error) {
			if input.OriginKind != domain.OriginExpense || input.OriginID != "exp-1" {
				t.Fatalf("unexpected input %+v", input)
			}
			return []*domain.LedgerEntry{{ID: "le-1", Direction: domain.DirectionOut}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/treasury/entries?origin_kind=expense&origin_id=exp-1", nil)
	rec := httptest.NewRecorder()

	h.ListEntries(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTreasuryHandler_CheckConsistency_Consistent(t *testing.T) {
	h := NewTreasuryHandler(&treasuryServiceStub{
		consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
			return &usecase.ConsistencyReport{
				Balance:      decimal.NewFromInt(100),
				ReplayedSum:  decimal.NewFromInt(100),
				IsConsistent: true,
				CheckedAt:    time.Now().UTC(),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/treasury/consistency", nil)
	rec := httptest.NewRecorder()

	h.CheckConsistency(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTreasuryHandler_CheckConsistency_Drifted(t *testing.T) {
	h := NewTreasuryHandler(&treasuryServiceStub{
		consistencyFn: func(ctx context.Context) (*usecase.ConsistencyReport, error) {
			return &usecase.ConsistencyReport{
				Balance:      decimal.NewFromInt(100),
				ReplayedSum:  decimal.NewFromInt(90),
				Difference:   decimal.NewFromInt(10),
				IsConsistent: false,
			}, usecase.ErrInconsistentTreasury
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/treasury/consistency", nil)
	rec := httptest.NewRecorder()

	h.CheckConsistency(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var report usecase.ConsistencyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if !report.Difference.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected difference 10, got %s", report.Difference)
	}
}
