package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/agencyledger/internal/adapter/http/dto"
	"github.com/iho/agencyledger/internal/usecase"
)

// AdvanceHandler handles salary advance HTTP requests.
type AdvanceHandler struct {
	advanceUC *usecase.AdvanceUseCase
}

// NewAdvanceHandler creates a new AdvanceHandler.
func NewAdvanceHandler(advanceUC *usecase.AdvanceUseCase) *AdvanceHandler {
	return &AdvanceHandler{advanceUC: advanceUC}
}

// Request files a pending advance request. No money moves until approval.
func (h *AdvanceHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	advance, err := h.advanceUC.RequestAdvance(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request advance", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AdvanceFromDomain(advance))
}

// Get retrieves an advance by ID.
func (h *AdvanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing advance ID", "")
		return
	}

	advance, err := h.advanceUC.GetAdvance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get advance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdvanceFromDomain(advance))
}

// List lists advances.
func (h *AdvanceHandler) List(w http.ResponseWriter, r *http.Request) {
	advances, err := h.advanceUC.ListAdvances(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list advances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdvancesFromDomain(advances))
}

// Approve approves a pending advance and pays it out of the till.
func (h *AdvanceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing advance ID", "")
		return
	}

	advance, err := h.advanceUC.ApproveAdvance(r.Context(), id, actorFrom(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve advance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdvanceFromDomain(advance))
}

// Reject rejects a pending advance. The till is untouched.
func (h *AdvanceHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing advance ID", "")
		return
	}

	advance, err := h.advanceUC.RejectAdvance(r.Context(), id, actorFrom(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reject advance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AdvanceFromDomain(advance))
}

// Delete removes a pending advance request.
func (h *AdvanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing advance ID", "")
		return
	}

	if err := h.advanceUC.DeleteAdvance(r.Context(), id, actorFrom(r)); err != nil {
		writeError(w, mapDomainError(err), "failed to delete advance", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
