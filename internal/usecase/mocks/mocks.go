package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Booking, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Booking, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error
	ListFunc                 func(ctx context.Context, limit, offset int) ([]*domain.Booking, error)
	ListByIssuerFunc         func(ctx context.Context, issuerID string, limit, offset int) ([]*domain.Booking, error)
	SumCostPriceByIssuerFunc func(ctx context.Context, tx usecase.Transaction, issuerID string) (decimal.Decimal, error)
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

func (m *MockBookingRepository) Create(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, booking)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Booking, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockBookingRepository) Update(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, booking)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) List(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bookings []*domain.Booking
	for _, b := range m.bookings {
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (m *MockBookingRepository) ListByIssuer(ctx context.Context, issuerID string, limit, offset int) ([]*domain.Booking, error) {
	if m.ListByIssuerFunc != nil {
		return m.ListByIssuerFunc(ctx, issuerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bookings []*domain.Booking
	for _, b := range m.bookings {
		if b.IssuerID == issuerID {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func (m *MockBookingRepository) SumCostPriceByIssuer(ctx context.Context, tx usecase.Transaction, issuerID string) (decimal.Decimal, error) {
	if m.SumCostPriceByIssuerFunc != nil {
		return m.SumCostPriceByIssuerFunc(ctx, tx, issuerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, b := range m.bookings {
		if b.IssuerID == issuerID {
			sum = sum.Add(b.CostPrice)
		}
	}
	return sum, nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error)
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListByBookingFunc    func(ctx context.Context, bookingID string, limit, offset int) ([]*domain.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *MockPaymentRepository) ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]*domain.Payment, error) {
	if m.ListByBookingFunc != nil {
		return m.ListByBookingFunc(ctx, bookingID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.Payment
	for _, p := range m.payments {
		if p.BookingID == bookingID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// MockIssuerRepository is a mock implementation of IssuerRepository.
type MockIssuerRepository struct {
	mu      sync.RWMutex
	issuers map[string]*domain.Issuer

	CreateFunc           func(ctx context.Context, issuer *domain.Issuer) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Issuer, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Issuer, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Issuer, error)
}

func NewMockIssuerRepository() *MockIssuerRepository {
	return &MockIssuerRepository{
		issuers: make(map[string]*domain.Issuer),
	}
}

func (m *MockIssuerRepository) Create(ctx context.Context, issuer *domain.Issuer) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, issuer)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issuers[issuer.ID] = issuer
	return nil
}

func (m *MockIssuerRepository) GetByID(ctx context.Context, id string) (*domain.Issuer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.issuers[id]; ok {
		return i, nil
	}
	return nil, domain.ErrIssuerNotFound
}

func (m *MockIssuerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Issuer, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockIssuerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Issuer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var issuers []*domain.Issuer
	for _, i := range m.issuers {
		issuers = append(issuers, i)
	}
	return issuers, nil
}

// MockIssuerPaymentRepository is a mock implementation of IssuerPaymentRepository.
type MockIssuerPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.IssuerPayment

	CreateFunc            func(ctx context.Context, tx usecase.Transaction, payment *domain.IssuerPayment) error
	ListByIssuerFunc      func(ctx context.Context, issuerID string, limit, offset int) ([]*domain.IssuerPayment, error)
	SumAmountByIssuerFunc func(ctx context.Context, tx usecase.Transaction, issuerID string) (decimal.Decimal, error)
}

func NewMockIssuerPaymentRepository() *MockIssuerPaymentRepository {
	return &MockIssuerPaymentRepository{
		payments: make(map[string]*domain.IssuerPayment),
	}
}

func (m *MockIssuerPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.IssuerPayment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockIssuerPaymentRepository) ListByIssuer(ctx context.Context, issuerID string, limit, offset int) ([]*domain.IssuerPayment, error) {
	if m.ListByIssuerFunc != nil {
		return m.ListByIssuerFunc(ctx, issuerID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.IssuerPayment
	for _, p := range m.payments {
		if p.IssuerID == issuerID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (m *MockIssuerPaymentRepository) SumAmountByIssuer(ctx context.Context, tx usecase.Transaction, issuerID string) (decimal.Decimal, error) {
	if m.SumAmountByIssuerFunc != nil {
		return m.SumAmountByIssuerFunc(ctx, tx, issuerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, p := range m.payments {
		if p.IssuerID == issuerID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

// MockTreasuryRepository is a mock implementation of TreasuryRepository.
// The default behavior keeps a real account and entry slice so tests can
// replay the history against the balance.
type MockTreasuryRepository struct {
	mu      sync.RWMutex
	account *domain.TreasuryAccount
	entries []*domain.LedgerEntry

	GetAccountFunc          func(ctx context.Context) (*domain.TreasuryAccount, error)
	GetAccountForUpdateFunc func(ctx context.Context, tx usecase.Transaction) (*domain.TreasuryAccount, error)
	UpdateBalanceFunc       func(ctx context.Context, tx usecase.Transaction, balance decimal.Decimal, updatedAt time.Time) error
	AppendEntryFunc         func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error
	ListEntriesFunc         func(ctx context.Context, limit, offset int) ([]*domain.LedgerEntry, error)
	ListEntriesByOriginFunc func(ctx context.Context, kind domain.OriginKind, originID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumEntriesFunc          func(ctx context.Context, tx usecase.Transaction) (decimal.Decimal, error)
}

func NewMockTreasuryRepository() *MockTreasuryRepository {
	now := time.Now().UTC()
	return &MockTreasuryRepository{
		account: &domain.TreasuryAccount{
			ID:        domain.TreasuryAccountID,
			Name:      "Main Treasury",
			Balance:   decimal.Zero,
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (m *MockTreasuryRepository) GetAccount(ctx context.Context) (*domain.TreasuryAccount, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := *m.account
	return &copied, nil
}

func (m *MockTreasuryRepository) GetAccountForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.TreasuryAccount, error) {
	if m.GetAccountForUpdateFunc != nil {
		return m.GetAccountForUpdateFunc(ctx, tx)
	}
	return m.GetAccount(ctx)
}

func (m *MockTreasuryRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.account.Balance = balance
	m.account.Version++
	m.account.UpdatedAt = updatedAt
	return nil
}

func (m *MockTreasuryRepository) AppendEntry(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	if m.AppendEntryFunc != nil {
		return m.AppendEntryFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockTreasuryRepository) ListEntries(ctx context.Context, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListEntriesFunc != nil {
		return m.ListEntriesFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*domain.LedgerEntry, len(m.entries))
	copy(entries, m.entries)
	return entries, nil
}

func (m *MockTreasuryRepository) ListEntriesByOrigin(ctx context.Context, kind domain.OriginKind, originID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	if m.ListEntriesByOriginFunc != nil {
		return m.ListEntriesByOriginFunc(ctx, kind, originID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.OriginKind != kind {
			continue
		}
		if originID != "" && e.OriginID != originID {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (m *MockTreasuryRepository) SumEntries(ctx context.Context, tx usecase.Transaction) (decimal.Decimal, error) {
	if m.SumEntriesFunc != nil {
		return m.SumEntriesFunc(ctx, tx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		sum = sum.Add(e.SignedAmount())
	}
	return sum, nil
}

// Entries returns a snapshot of the appended entries for assertions.
func (m *MockTreasuryRepository) Entries() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*domain.LedgerEntry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.Expense

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Expense, error)
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		expenses: make(map[string]*domain.Expense),
	}
}

func (m *MockExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.expenses[id]; ok {
		return e, nil
	}
	return nil, domain.ErrExpenseNotFound
}

func (m *MockExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses[expense.ID] = expense
	return nil
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return domain.ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *MockExpenseRepository) List(ctx context.Context, limit, offset int) ([]*domain.Expense, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var expenses []*domain.Expense
	for _, e := range m.expenses {
		expenses = append(expenses, e)
	}
	return expenses, nil
}

// MockAdvanceRepository is a mock implementation of AdvanceRepository.
type MockAdvanceRepository struct {
	mu       sync.RWMutex
	advances map[string]*domain.Advance

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, advance *domain.Advance) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Advance, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Advance, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, advance *domain.Advance) error
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Advance, error)
}

func NewMockAdvanceRepository() *MockAdvanceRepository {
	return &MockAdvanceRepository{
		advances: make(map[string]*domain.Advance),
	}
}

func (m *MockAdvanceRepository) Create(ctx context.Context, tx usecase.Transaction, advance *domain.Advance) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, advance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances[advance.ID] = advance
	return nil
}

func (m *MockAdvanceRepository) GetByID(ctx context.Context, id string) (*domain.Advance, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.advances[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAdvanceNotFound
}

func (m *MockAdvanceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Advance, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAdvanceRepository) Update(ctx context.Context, tx usecase.Transaction, advance *domain.Advance) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, advance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advances[advance.ID] = advance
	return nil
}

func (m *MockAdvanceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.advances[id]; !ok {
		return domain.ErrAdvanceNotFound
	}
	delete(m.advances, id)
	return nil
}

func (m *MockAdvanceRepository) List(ctx context.Context, limit, offset int) ([]*domain.Advance, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var advances []*domain.Advance
	for _, a := range m.advances {
		advances = append(advances, a)
	}
	return advances, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return NewMockTransaction(), nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func NewMockTransaction() *MockTransaction {
	return &MockTransaction{}
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "test-id-" + strconv.Itoa(m.counter)
}
