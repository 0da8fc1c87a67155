package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for compliance and debugging
type AuditLog struct {
	ID           string
	UserID       string // Who performed the action
	Action       string // What action (payment.create, booking.cancel, etc.)
	ResourceType string // Type of resource (booking, payment, expense)
	ResourceID   string // ID of the resource
	RequestID    string // Request ID for tracing
	BeforeState  JSON   // State before the action
	AfterState   JSON   // State after the action
	Status       string // success, failure, error
	ErrorMessage string // If status=error, the error message
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	// Booking actions
	AuditActionBookingCreate AuditAction = "booking.create"
	AuditActionBookingCancel AuditAction = "booking.cancel"
	AuditActionRefundSettle  AuditAction = "booking.refund_settle"

	// Payment actions
	AuditActionPaymentCreate AuditAction = "payment.create"
	AuditActionPaymentDelete AuditAction = "payment.delete"

	// Issuer actions
	AuditActionIssuerPaymentCreate AuditAction = "issuer_payment.create"

	// Expense actions
	AuditActionExpenseCreate AuditAction = "expense.create"
	AuditActionExpenseUpdate AuditAction = "expense.update"
	AuditActionExpenseDelete AuditAction = "expense.delete"

	// Advance actions
	AuditActionAdvanceRequest AuditAction = "advance.request"
	AuditActionAdvanceApprove AuditAction = "advance.approve"
	AuditActionAdvanceReject  AuditAction = "advance.reject"
	AuditActionAdvanceDelete  AuditAction = "advance.delete"

	// Treasury actions
	AuditActionTreasuryDeposit  AuditAction = "treasury.deposit"
	AuditActionTreasuryWithdraw AuditAction = "treasury.withdraw"

	// Auth actions
	AuditActionUserLogin AuditAction = "user.login"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusError   AuditStatus = "error"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	UserID       string
	Action       string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}
