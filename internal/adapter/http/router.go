package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/agencyledger/internal/adapter/http/handler"
	"github.com/iho/agencyledger/internal/adapter/http/middleware"
	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/infrastructure/auth"
	"github.com/iho/agencyledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BookingHandler   *handler.BookingHandler
	PaymentHandler   *handler.PaymentHandler
	TreasuryHandler  *handler.TreasuryHandler
	IssuerHandler    *handler.IssuerHandler
	ExpenseHandler   *handler.ExpenseHandler
	AdvanceHandler   *handler.AdvanceHandler
	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	AuditHandler     *handler.AuditHandler
	HealthHandler    *handler.HealthHandler
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logging          *middleware.LoggingMiddleware
}

// NewRouter creates the HTTP router. Everything under /api/v1 except
// login requires a valid token; role guards follow the permission model:
// viewers read, operators record, only admins delete or move cash by
// hand.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
			}

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", cfg.BookingHandler.List)
				r.Get("/{id}", cfg.BookingHandler.Get)
				r.Get("/{id}/payments", cfg.PaymentHandler.ListByBooking)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleOperator))
					r.Post("/", cfg.BookingHandler.Create)
					r.Post("/{id}/cancel", cfg.BookingHandler.Cancel)
				})

				r.With(middleware.RequireRole(domain.RoleAdmin)).
					Post("/{id}/refund/settle", cfg.BookingHandler.SettleRefund)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/{id}", cfg.PaymentHandler.Get)
				r.With(middleware.RequireRole(domain.RoleOperator)).Post("/", cfg.PaymentHandler.Create)
				r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", cfg.PaymentHandler.Delete)
			})

			r.Route("/treasury", func(r chi.Router) {
				r.Get("/", cfg.TreasuryHandler.Get)
				r.Get("/entries", cfg.TreasuryHandler.ListEntries)
				r.Get("/consistency", cfg.TreasuryHandler.CheckConsistency)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleAdmin))
					r.Post("/deposit", cfg.TreasuryHandler.Deposit)
					r.Post("/withdraw", cfg.TreasuryHandler.Withdraw)
				})
			})

			r.Route("/issuers", func(r chi.Router) {
				r.Get("/", cfg.IssuerHandler.List)
				r.Get("/{id}", cfg.IssuerHandler.Get)
				r.Get("/{id}/payments", cfg.IssuerHandler.ListPayments)
				r.Get("/{id}/balance", cfg.IssuerHandler.GetBalance)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleOperator))
					r.Post("/", cfg.IssuerHandler.Create)
					r.Post("/{id}/payments", cfg.IssuerHandler.RecordPayment)
				})
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", cfg.ExpenseHandler.List)
				r.Get("/{id}", cfg.ExpenseHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleOperator))
					r.Post("/", cfg.ExpenseHandler.Create)
					r.Put("/{id}", cfg.ExpenseHandler.Update)
				})

				r.With(middleware.RequireRole(domain.RoleAdmin)).Delete("/{id}", cfg.ExpenseHandler.Delete)
			})

			r.Route("/advances", func(r chi.Router) {
				r.Get("/", cfg.AdvanceHandler.List)
				r.Get("/{id}", cfg.AdvanceHandler.Get)
				r.Post("/", cfg.AdvanceHandler.Request)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(domain.RoleAdmin))
					r.Post("/{id}/approve", cfg.AdvanceHandler.Approve)
					r.Post("/{id}/reject", cfg.AdvanceHandler.Reject)
					r.Delete("/{id}", cfg.AdvanceHandler.Delete)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Post("/", cfg.UserHandler.Create)
				r.Get("/", cfg.UserHandler.List)
				r.Get("/{id}", cfg.UserHandler.Get)
				r.Put("/{id}", cfg.UserHandler.Update)
			})

			r.Route("/audit", func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/", cfg.AuditHandler.List)
				r.Get("/{type}/{id}", cfg.AuditHandler.GetByResource)
			})
		})
	})

	return r
}
