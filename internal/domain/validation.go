package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidBookingNumber = errors.New("invalid booking number")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrPasswordTooWeak      = errors.New("password does not meet requirements")
)

// Validation constants
const (
	MaxBookingNumberLength = 64
	MaxDescriptionLength   = 512
	MaxAmount              = "1000000000" // 1 billion
	MinPasswordLength      = 8
	MaxPasswordLength      = 128
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateBookingNumber validates the free-text booking number. Booking
// numbers are not globally unique; only length is enforced.
func ValidateBookingNumber(number string) error {
	number = strings.TrimSpace(number)

	if number == "" {
		return fmt.Errorf("%w: booking number cannot be empty", ErrInvalidBookingNumber)
	}

	if len(number) > MaxBookingNumberLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidBookingNumber, MaxBookingNumberLength)
	}

	return nil
}

// ValidatePositiveAmount validates a strictly positive money amount.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateNonNegativeAmount validates a zero-or-positive money amount,
// used for cancellation tax and commission.
func ValidateNonNegativeAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 500
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
