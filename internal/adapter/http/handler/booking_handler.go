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

// BookingService defines the booking behavior needed by BookingHandler.
type BookingService interface {
	CreateBooking(ctx context.Context, input usecase.CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, input usecase.ListBookingsInput) ([]*domain.Booking, error)
}

// CancellationService defines the cancellation behavior needed by
// BookingHandler.
type CancellationService interface {
	CancelBooking(ctx context.Context, input usecase.CancelBookingInput) (*domain.Booking, error)
	SettleRefund(ctx context.Context, bookingID, actor string) (*domain.Booking, error)
}

// BookingHandler handles booking-related HTTP requests.
type BookingHandler struct {
	bookingUC      BookingService
	cancellationUC CancellationService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingUC BookingService, cancellationUC CancellationService) *BookingHandler {
	return &BookingHandler{
		bookingUC:      bookingUC,
		cancellationUC: cancellationUC,
	}
}

// Create creates a new booking.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	booking, err := h.bookingUC.CreateBooking(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create booking", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BookingFromDomain(booking))
}

// Get retrieves a booking by ID.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing booking ID", "")
		return
	}

	booking, err := h.bookingUC.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get booking", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingFromDomain(booking))
}

// List lists bookings, optionally filtered by issuer.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUC.ListBookings(r.Context(), usecase.ListBookingsInput{
		IssuerID: r.URL.Query().Get("issuer_id"),
		Limit:    parseIntQuery(r, "limit", 50),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingsFromDomain(bookings))
}

// Cancel reprices a booking at cancellation time. The refund this may
// produce stays unsettled until the settle endpoint is called.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing booking ID", "")
		return
	}

	var req dto.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	booking, err := h.cancellationUC.CancelBooking(r.Context(), req.ToUseCaseInput(id, actorFrom(r)))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel booking", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingFromDomain(booking))
}

// SettleRefund pays out the refund of a cancelled booking.
func (h *BookingHandler) SettleRefund(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing booking ID", "")
		return
	}

	booking, err := h.cancellationUC.SettleRefund(r.Context(), id, actorFrom(r))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to settle refund", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BookingFromDomain(booking))
}
