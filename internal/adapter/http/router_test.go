package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/agencyledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/agencyledger/internal/adapter/http/middleware"
	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/auth"
	"github.com/iho/agencyledger/internal/usecase"
	"github.com/iho/agencyledger/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_UnauthenticatedRequestRejected(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestNewRouter_ViewerCannotRecordPayments(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Minute)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
	}))

	token, err := jwtManager.Generate(&domain.User{ID: "u-1", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Minute)
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.JWTManager = jwtManager
		cfg.IdempotencyStore = store
	}))

	token, err := jwtManager.Generate(&domain.User{ID: "u-1", Role: domain.RoleOperator})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	body := `{"booking_id":"bk-1","amount":"100","method":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/auth/login",
		"POST /api/v1/bookings/",
		"POST /api/v1/bookings/{id}/cancel",
		"POST /api/v1/bookings/{id}/refund/settle",
		"POST /api/v1/payments/",
		"DELETE /api/v1/payments/{id}",
		"GET /api/v1/treasury/",
		"POST /api/v1/treasury/deposit",
		"POST /api/v1/treasury/withdraw",
		"GET /api/v1/treasury/consistency",
		"POST /api/v1/issuers/{id}/payments",
		"GET /api/v1/issuers/{id}/balance",
		"PUT /api/v1/expenses/{id}",
		"POST /api/v1/advances/{id}/approve",
		"GET /api/v1/audit/",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()
	treasuryRepo := mocks.NewMockTreasuryRepository()

	treasuryUC := usecase.NewTreasuryUseCase(txManager, treasuryRepo, nil, idGen, nil)
	bookingUC := usecase.NewBookingUseCase(txManager, mocks.NewMockBookingRepository(), treasuryUC, nil, idGen, nil)
	cancellationUC := usecase.NewCancellationUseCase(txManager, mocks.NewMockBookingRepository(), treasuryUC, nil, idGen, nil)
	paymentUC := usecase.NewPaymentUseCase(txManager, mocks.NewMockBookingRepository(), mocks.NewMockPaymentRepository(), treasuryUC, nil, idGen, nil)
	issuerUC := usecase.NewIssuerUseCase(txManager, mocks.NewMockIssuerRepository(), mocks.NewMockIssuerPaymentRepository(), mocks.NewMockBookingRepository(), treasuryUC, nil, idGen, nil, nil)
	expenseUC := usecase.NewExpenseUseCase(txManager, mocks.NewMockExpenseRepository(), treasuryUC, nil, idGen, nil)
	advanceUC := usecase.NewAdvanceUseCase(txManager, mocks.NewMockAdvanceRepository(), treasuryUC, nil, idGen, nil)
	userUC := usecase.NewUserUseCase(nil, nil, idGen)

	jwtManager := auth.NewJWTManager("router-test-secret", time.Minute)

	cfg := RouterConfig{
		BookingHandler:  handler.NewBookingHandler(bookingUC, cancellationUC),
		PaymentHandler:  handler.NewPaymentHandler(paymentUC),
		TreasuryHandler: handler.NewTreasuryHandler(treasuryUC),
		IssuerHandler:   handler.NewIssuerHandler(issuerUC),
		ExpenseHandler:  handler.NewExpenseHandler(expenseUC),
		AdvanceHandler:  handler.NewAdvanceHandler(advanceUC),
		AuthHandler:     handler.NewAuthHandler(userUC, jwtManager),
		UserHandler:     handler.NewUserHandler(userUC),
		AuditHandler:    handler.NewAuditHandler(&stubAuditRepository{}),
		HealthHandler:   &handler.HealthHandler{},
		JWTManager:      jwtManager,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAuditRepository struct{}

func (stubAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return nil
}

func (stubAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return []*domain.AuditLog{}, nil
}

func (stubAuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return []*domain.AuditLog{}, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
