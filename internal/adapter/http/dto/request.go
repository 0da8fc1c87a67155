package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

// CreateBookingRequest represents a request to create a booking.
type CreateBookingRequest struct {
	BookingNumber  string          `json:"booking_number"`
	CustomerID     string          `json:"customer_id"`
	IssuerID       string          `json:"issuer_id"`
	Airport        string          `json:"airport"`
	Country        string          `json:"country"`
	DepartureDate  time.Time       `json:"departure_date"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	InitialPayment decimal.Decimal `json:"initial_payment"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBookingRequest) ToUseCaseInput(actor string) usecase.CreateBookingInput {
	return usecase.CreateBookingInput{
		BookingNumber:  r.BookingNumber,
		CustomerID:     r.CustomerID,
		IssuerID:       r.IssuerID,
		Airport:        r.Airport,
		Country:        r.Country,
		DepartureDate:  r.DepartureDate,
		CostPrice:      r.CostPrice,
		SellPrice:      r.SellPrice,
		InitialPayment: r.InitialPayment,
		Actor:          actor,
	}
}

// CancelBookingRequest represents a request to cancel a booking.
type CancelBookingRequest struct {
	Reason           string          `json:"reason"`
	CancelTax        decimal.Decimal `json:"cancel_tax"`
	CancelCommission decimal.Decimal `json:"cancel_commission"`
}

// ToUseCaseInput converts to use case input.
func (r *CancelBookingRequest) ToUseCaseInput(bookingID, actor string) usecase.CancelBookingInput {
	return usecase.CancelBookingInput{
		BookingID:        bookingID,
		Reason:           r.Reason,
		CancelTax:        r.CancelTax,
		CancelCommission: r.CancelCommission,
		Actor:            actor,
	}
}

// AddPaymentRequest represents a request to record a customer payment.
type AddPaymentRequest struct {
	BookingID     string               `json:"booking_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	ReceiptNumber string               `json:"receipt_number,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddPaymentRequest) ToUseCaseInput(actor string) usecase.AddPaymentInput {
	input := usecase.AddPaymentInput{
		BookingID:     r.BookingID,
		Amount:        r.Amount,
		Method:        r.Method,
		ReceiptNumber: r.ReceiptNumber,
		Notes:         r.Notes,
		Actor:         actor,
	}
	if r.PaidAt != nil {
		input.PaidAt = *r.PaidAt
	}
	return input
}

// CreateIssuerRequest represents a request to register an issuer.
type CreateIssuerRequest struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateIssuerRequest) ToUseCaseInput(actor string) usecase.CreateIssuerInput {
	return usecase.CreateIssuerInput{
		Name:    r.Name,
		Country: r.Country,
		Actor:   actor,
	}
}

// RecordIssuerPaymentRequest represents a payment made to an issuer.
type RecordIssuerPaymentRequest struct {
	Amount        decimal.Decimal      `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	ReceiptNumber string               `json:"receipt_number,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordIssuerPaymentRequest) ToUseCaseInput(issuerID, actor string) usecase.RecordIssuerPaymentInput {
	input := usecase.RecordIssuerPaymentInput{
		IssuerID:      issuerID,
		Amount:        r.Amount,
		Method:        r.Method,
		ReceiptNumber: r.ReceiptNumber,
		Notes:         r.Notes,
		Actor:         actor,
	}
	if r.PaidAt != nil {
		input.PaidAt = *r.PaidAt
	}
	return input
}

// CreateExpenseRequest represents a request to record an expense.
type CreateExpenseRequest struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
	SpentAt  *time.Time      `json:"spent_at,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput(actor string) usecase.CreateExpenseInput {
	input := usecase.CreateExpenseInput{
		Title:    r.Title,
		Amount:   r.Amount,
		Category: r.Category,
		Notes:    r.Notes,
		Actor:    actor,
	}
	if r.SpentAt != nil {
		input.SpentAt = *r.SpentAt
	}
	return input
}

// UpdateExpenseRequest represents a request to change an expense.
type UpdateExpenseRequest struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
	SpentAt  *time.Time      `json:"spent_at,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput(expenseID, actor string) usecase.UpdateExpenseInput {
	input := usecase.UpdateExpenseInput{
		ExpenseID: expenseID,
		Title:     r.Title,
		Amount:    r.Amount,
		Category:  r.Category,
		Notes:     r.Notes,
		Actor:     actor,
	}
	if r.SpentAt != nil {
		input.SpentAt = *r.SpentAt
	}
	return input
}

// RequestAdvanceRequest represents an employee advance request.
type RequestAdvanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RequestAdvanceRequest) ToUseCaseInput(requestedBy string) usecase.RequestAdvanceInput {
	return usecase.RequestAdvanceInput{
		RequestedBy: requestedBy,
		Amount:      r.Amount,
		Reason:      r.Reason,
	}
}

// MoveCashRequest represents a manual treasury deposit or withdrawal.
type MoveCashRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *MoveCashRequest) ToUseCaseInput(actor string) usecase.MoveCashInput {
	return usecase.MoveCashInput{
		Amount:      r.Amount,
		Description: r.Description,
		Actor:       actor,
	}
}

// CreateUserRequest represents a request to create a back-office user.
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateUserRequest) ToUseCaseInput() usecase.CreateUserInput {
	return usecase.CreateUserInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		Role:     r.Role,
	}
}

// UpdateUserRequest represents a partial user update. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	Name     *string      `json:"name,omitempty"`
	Role     *domain.Role `json:"role,omitempty"`
	Active   *bool        `json:"active,omitempty"`
	Password *string      `json:"password,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateUserRequest) ToUseCaseInput(userID string) usecase.UpdateUserInput {
	return usecase.UpdateUserInput{
		ID:       userID,
		Name:     r.Name,
		Role:     r.Role,
		Active:   r.Active,
		Password: r.Password,
	}
}
