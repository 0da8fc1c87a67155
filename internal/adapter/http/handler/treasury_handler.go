package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/agencyledger/internal/adapter/http/dto"
	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

// TreasuryService defines the behavior needed by TreasuryHandler.
type TreasuryService interface {
	GetAccount(ctx context.Context) (*domain.TreasuryAccount, error)
	Deposit(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error)
	Withdraw(ctx context.Context, input usecase.MoveCashInput) (*domain.TreasuryAccount, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.LedgerEntry, error)
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// TreasuryHandler handles treasury-related HTTP requests.
type TreasuryHandler struct {
	treasuryUC TreasuryService
}

// NewTreasuryHandler creates a new TreasuryHandler.
func NewTreasuryHandler(treasuryUC TreasuryService) *TreasuryHandler {
	return &TreasuryHandler{treasuryUC: treasuryUC}
}

// Get returns the treasury account with its current balance.
func (h *TreasuryHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.treasuryUC.GetAccount(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get treasury", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TreasuryFromDomain(account))
}

// Deposit records cash put into the till by hand.
func (h *TreasuryHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.treasuryUC.Deposit(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TreasuryFromDomain(account))
}

// Withdraw records cash taken out of the till by hand.
func (h *TreasuryHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.MoveCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.treasuryUC.Withdraw(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to withdraw", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TreasuryFromDomain(account))
}

// ListEntries lists ledger entries, newest first.
func (h *TreasuryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.treasuryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		OriginKind: domain.OriginKind(r.URL.Query().Get("origin_kind")),
		OriginID:   r.URL.Query().Get("origin_id"),
		Limit:      parseIntQuery(r, "limit", 50),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// CheckConsistency replays the entry history against the stored balance.
// A drifted treasury still returns the report so operators can see the
// difference, with a 409 status.
func (h *TreasuryHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.treasuryUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentTreasury) && report != nil {
			writeJSON(w, http.StatusConflict, report)
			return
		}
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
