package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
)

// BookingRepository defines data access for bookings.
type BookingRepository interface {
	Create(ctx context.Context, tx Transaction, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Booking, error)
	Update(ctx context.Context, tx Transaction, booking *domain.Booking) error
	List(ctx context.Context, limit, offset int) ([]*domain.Booking, error)
	ListByIssuer(ctx context.Context, issuerID string, limit, offset int) ([]*domain.Booking, error)
	SumCostPriceByIssuer(ctx context.Context, tx Transaction, issuerID string) (decimal.Decimal, error)
}

// PaymentRepository defines data access for customer payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Payment, error)
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]*domain.Payment, error)
}

// IssuerRepository defines data access for issuers.
type IssuerRepository interface {
	Create(ctx context.Context, issuer *domain.Issuer) error
	GetByID(ctx context.Context, id string) (*domain.Issuer, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Issuer, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Issuer, error)
}

// IssuerPaymentRepository defines data access for payments to issuers.
type IssuerPaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.IssuerPayment) error
	ListByIssuer(ctx context.Context, issuerID string, limit, offset int) ([]*domain.IssuerPayment, error)
	SumAmountByIssuer(ctx context.Context, tx Transaction, issuerID string) (decimal.Decimal, error)
}

// TreasuryRepository defines data access for the singleton treasury
// account and its append-only entry history.
type TreasuryRepository interface {
	GetAccount(ctx context.Context) (*domain.TreasuryAccount, error)
	GetAccountForUpdate(ctx context.Context, tx Transaction) (*domain.TreasuryAccount, error)
	UpdateBalance(ctx context.Context, tx Transaction, balance decimal.Decimal, updatedAt time.Time) error
	AppendEntry(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	ListEntries(ctx context.Context, limit, offset int) ([]*domain.LedgerEntry, error)
	ListEntriesByOrigin(ctx context.Context, kind domain.OriginKind, originID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumEntries(ctx context.Context, tx Transaction) (decimal.Decimal, error)
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Expense, error)
	Update(ctx context.Context, tx Transaction, expense *domain.Expense) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Expense, error)
}

// AdvanceRepository defines data access for advances.
type AdvanceRepository interface {
	Create(ctx context.Context, tx Transaction, advance *domain.Advance) error
	GetByID(ctx context.Context, id string) (*domain.Advance, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Advance, error)
	Update(ctx context.Context, tx Transaction, advance *domain.Advance) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Advance, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed with a transient error, such
// as a lost lock race. The operation must be safe to run again from the
// top.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
