package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/agencyledger/internal/adapter/http/dto"
	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	AddPayment(ctx context.Context, input usecase.AddPaymentInput) (*domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	DeletePayment(ctx context.Context, paymentID, actor string) error
	ListPaymentsByBooking(ctx context.Context, input usecase.ListPaymentsByBookingInput) ([]*domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create records a payment against a booking.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.AddPayment(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Get retrieves a payment by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// Delete removes a payment and reverses its booking and treasury effects.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	if err := h.paymentUC.DeletePayment(r.Context(), id, actorFrom(r)); err != nil {
		writeError(w, mapDomainError(err), "failed to delete payment", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByBooking lists payments for a booking.
func (h *PaymentHandler) ListByBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		writeError(w, http.StatusBadRequest, "missing booking ID", "")
		return
	}

	payments, err := h.paymentUC.ListPaymentsByBooking(r.Context(), usecase.ListPaymentsByBookingInput{
		BookingID: bookingID,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}
