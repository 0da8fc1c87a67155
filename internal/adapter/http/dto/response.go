package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
)

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID              string               `json:"id"`
	BookingNumber   string               `json:"booking_number"`
	CustomerID      string               `json:"customer_id,omitempty"`
	IssuerID        string               `json:"issuer_id,omitempty"`
	Airport         string               `json:"airport,omitempty"`
	Country         string               `json:"country,omitempty"`
	DepartureDate   time.Time            `json:"departure_date"`
	CostPrice       decimal.Decimal      `json:"cost_price"`
	SellPrice       decimal.Decimal      `json:"sell_price"`
	InitialPayment  decimal.Decimal      `json:"initial_payment"`
	TotalPaid       decimal.Decimal      `json:"total_paid"`
	RemainingAmount decimal.Decimal      `json:"remaining_amount"`
	Status          domain.BookingStatus `json:"status"`
	Cancellation    *CancellationInfo    `json:"cancellation,omitempty"`
	CreatedBy       string               `json:"created_by,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// CancellationInfo carries the cancellation snapshot of a cancelled
// booking. It is omitted entirely for active bookings.
type CancellationInfo struct {
	Reason            string          `json:"reason,omitempty"`
	CancelTax         decimal.Decimal `json:"cancel_tax"`
	CancelCommission  decimal.Decimal `json:"cancel_commission"`
	PayBeforeCancel   decimal.Decimal `json:"pay_before_cancel"`
	CostBeforeCancel  decimal.Decimal `json:"cost_before_cancel"`
	PriceBeforeCancel decimal.Decimal `json:"price_before_cancel"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	RefundSettledAt   *time.Time      `json:"refund_settled_at,omitempty"`
}

// BookingFromDomain converts a domain booking to a response.
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:              b.ID,
		BookingNumber:   b.BookingNumber,
		CustomerID:      b.CustomerID,
		IssuerID:        b.IssuerID,
		Airport:         b.Airport,
		Country:         b.Country,
		DepartureDate:   b.DepartureDate,
		CostPrice:       b.CostPrice,
		SellPrice:       b.SellPrice,
		InitialPayment:  b.InitialPayment,
		TotalPaid:       b.TotalPaid,
		RemainingAmount: b.RemainingAmount,
		Status:          b.Status,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.Cancelled() {
		resp.Cancellation = &CancellationInfo{
			Reason:            b.CancelReason,
			CancelTax:         b.CancelTax,
			CancelCommission:  b.CancelCommission,
			PayBeforeCancel:   b.PayBeforeCancel,
			CostBeforeCancel:  b.CostBeforeCancel,
			PriceBeforeCancel: b.PriceBeforeCancel,
			RefundAmount:      b.RefundAmount,
			RefundSettledAt:   b.RefundSettledAt,
		}
	}

	return resp
}

// BookingsFromDomain converts domain bookings to responses.
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	result := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		result[i] = BookingFromDomain(b)
	}
	return result
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	PaidAt        time.Time            `json:"paid_at"`
	ReceiptNumber string               `json:"receipt_number,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedBy     string               `json:"created_by,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		Method:        p.Method,
		PaidAt:        p.PaidAt,
		ReceiptNumber: p.ReceiptNumber,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// IssuerResponse represents an issuer in API responses.
type IssuerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IssuerFromDomain converts a domain issuer to a response.
func IssuerFromDomain(i *domain.Issuer) *IssuerResponse {
	return &IssuerResponse{
		ID:        i.ID,
		Name:      i.Name,
		Country:   i.Country,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// IssuersFromDomain converts domain issuers to responses.
func IssuersFromDomain(issuers []*domain.Issuer) []*IssuerResponse {
	result := make([]*IssuerResponse, len(issuers))
	for i, iss := range issuers {
		result[i] = IssuerFromDomain(iss)
	}
	return result
}

// IssuerPaymentResponse represents an issuer payment in API responses.
type IssuerPaymentResponse struct {
	ID            string               `json:"id"`
	IssuerID      string               `json:"issuer_id"`
	Amount        decimal.Decimal      `json:"amount"`
	Method        domain.PaymentMethod `json:"method"`
	PaidAt        time.Time            `json:"paid_at"`
	ReceiptNumber string               `json:"receipt_number,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	CreatedBy     string               `json:"created_by,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// IssuerPaymentFromDomain converts a domain issuer payment to a response.
func IssuerPaymentFromDomain(p *domain.IssuerPayment) *IssuerPaymentResponse {
	return &IssuerPaymentResponse{
		ID:            p.ID,
		IssuerID:      p.IssuerID,
		Amount:        p.Amount,
		Method:        p.Method,
		PaidAt:        p.PaidAt,
		ReceiptNumber: p.ReceiptNumber,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}

// IssuerPaymentsFromDomain converts domain issuer payments to responses.
func IssuerPaymentsFromDomain(payments []*domain.IssuerPayment) []*IssuerPaymentResponse {
	result := make([]*IssuerPaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = IssuerPaymentFromDomain(p)
	}
	return result
}

// TreasuryResponse represents the treasury account in API responses.
type TreasuryResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TreasuryFromDomain converts the domain treasury account to a response.
func TreasuryFromDomain(a *domain.TreasuryAccount) *TreasuryResponse {
	return &TreasuryResponse{
		ID:        a.ID,
		Name:      a.Name,
		Balance:   a.Balance,
		Version:   a.Version,
		UpdatedAt: a.UpdatedAt,
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           string                `json:"id"`
	Amount       decimal.Decimal       `json:"amount"`
	Direction    domain.EntryDirection `json:"direction"`
	Description  string                `json:"description,omitempty"`
	OriginKind   domain.OriginKind     `json:"origin_kind"`
	OriginID     string                `json:"origin_id,omitempty"`
	Actor        string                `json:"actor,omitempty"`
	BalanceAfter decimal.Decimal       `json:"balance_after"`
	CreatedAt    time.Time             `json:"created_at"`
}

// EntryFromDomain converts a domain ledger entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		Amount:       e.Amount,
		Direction:    e.Direction,
		Description:  e.Description,
		OriginKind:   e.OriginKind,
		OriginID:     e.OriginID,
		Actor:        e.Actor,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt,
	}
}

// EntriesFromDomain converts domain ledger entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category,omitempty"`
	SpentAt   time.Time       `json:"spent_at"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  e.Category,
		SpentAt:   e.SpentAt,
		Notes:     e.Notes,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.Expense) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// AdvanceResponse represents a salary advance in API responses.
type AdvanceResponse struct {
	ID          string               `json:"id"`
	RequestedBy string               `json:"requested_by"`
	Amount      decimal.Decimal      `json:"amount"`
	Reason      string               `json:"reason,omitempty"`
	Status      domain.AdvanceStatus `json:"status"`
	ApprovedBy  string               `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time           `json:"approved_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// AdvanceFromDomain converts a domain advance to a response.
func AdvanceFromDomain(a *domain.Advance) *AdvanceResponse {
	return &AdvanceResponse{
		ID:          a.ID,
		RequestedBy: a.RequestedBy,
		Amount:      a.Amount,
		Reason:      a.Reason,
		Status:      a.Status,
		ApprovedBy:  a.ApprovedBy,
		ApprovedAt:  a.ApprovedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AdvancesFromDomain converts domain advances to responses.
func AdvancesFromDomain(advances []*domain.Advance) []*AdvanceResponse {
	result := make([]*AdvanceResponse, len(advances))
	for i, a := range advances {
		result[i] = AdvanceFromDomain(a)
	}
	return result
}

// UserResponse represents a user in API responses. The password hash
// never leaves the server.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UsersFromDomain converts domain users to responses.
func UsersFromDomain(users []*domain.User) []*UserResponse {
	result := make([]*UserResponse, len(users))
	for i, u := range users {
		result[i] = UserFromDomain(u)
	}
	return result
}

// AuditLogResponse represents an audit log entry in API responses.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	RequestID    string      `json:"request_id,omitempty"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditLogFromDomain converts a domain audit log to a response.
func AuditLogFromDomain(l *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		RequestID:    l.RequestID,
		BeforeState:  l.BeforeState,
		AfterState:   l.AfterState,
		Status:       l.Status,
		ErrorMessage: l.ErrorMessage,
		CreatedAt:    l.CreatedAt,
	}
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = AuditLogFromDomain(l)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
