package domain

import "errors"

var (
	// Not-found errors
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrIssuerNotFound  = errors.New("issuer not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrAdvanceNotFound = errors.New("advance not found")
	ErrUserNotFound    = errors.New("user not found")

	// Amount and business-rule rejections
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrExceedsRemaining     = errors.New("payment exceeds remaining amount")
	ErrExceedsOwed          = errors.New("payment exceeds amount owed to issuer")

	// Cancellation state machine misuse
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrNotCancelled     = errors.New("booking is not cancelled")
	ErrNothingToRefund  = errors.New("booking has no refund to settle")
	ErrAlreadySettled   = errors.New("refund has already been settled")

	// Advance state machine misuse
	ErrAdvanceNotPending = errors.New("advance is not pending")

	// Treasury errors
	ErrInvalidOrigin = errors.New("invalid ledger entry origin")

	// ErrConsistencyFailure signals that the atomic ledger+entity write
	// could not be committed. Callers may retry the whole operation; no
	// partial state was made visible.
	ErrConsistencyFailure = errors.New("ledger write could not be committed")
)
