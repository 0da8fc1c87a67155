package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/agencyledger/internal/adapter/http/dto"
	"github.com/iho/agencyledger/internal/usecase"
)

// IssuerHandler handles issuer-related HTTP requests.
type IssuerHandler struct {
	issuerUC *usecase.IssuerUseCase
}

// NewIssuerHandler creates a new IssuerHandler.
func NewIssuerHandler(issuerUC *usecase.IssuerUseCase) *IssuerHandler {
	return &IssuerHandler{issuerUC: issuerUC}
}

// Create registers a new issuer.
func (h *IssuerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateIssuerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	issuer, err := h.issuerUC.CreateIssuer(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create issuer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.IssuerFromDomain(issuer))
}

// Get retrieves an issuer by ID.
func (h *IssuerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing issuer ID", "")
		return
	}

	issuer, err := h.issuerUC.GetIssuer(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get issuer", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IssuerFromDomain(issuer))
}

// List lists issuers.
func (h *IssuerHandler) List(w http.ResponseWriter, r *http.Request) {
	issuers, err := h.issuerUC.ListIssuers(r.Context(), parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list issuers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IssuersFromDomain(issuers))
}

// RecordPayment records a payment made to an issuer. The amount may not
// exceed the issuer's outstanding payable.
func (h *IssuerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing issuer ID", "")
		return
	}

	var req dto.RecordIssuerPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.issuerUC.RecordIssuerPayment(r.Context(), req.ToUseCaseInput(id, actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record issuer payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.IssuerPaymentFromDomain(payment))
}

// ListPayments lists payments made to an issuer.
func (h *IssuerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing issuer ID", "")
		return
	}

	payments, err := h.issuerUC.ListIssuerPayments(r.Context(), id, parseIntQuery(r, "limit", 50), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list issuer payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IssuerPaymentsFromDomain(payments))
}

// GetBalance returns the issuer's payable summary.
func (h *IssuerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing issuer ID", "")
		return
	}

	balance, err := h.issuerUC.GetIssuerBalance(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get issuer balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, balance)
}
