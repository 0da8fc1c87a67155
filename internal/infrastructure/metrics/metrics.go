package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/agencyledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerEntries   *prometheus.CounterVec
	TreasuryBalance prometheus.Gauge

	// Booking metrics
	BookingsCreated   prometheus.Counter
	BookingsCancelled prometheus.Counter
	RefundsSettled    prometheus.Counter
	RefundAmount      prometheus.Histogram

	// Payment metrics
	PaymentsRecorded prometheus.Counter
	PaymentsDeleted  prometheus.Counter
	PaymentAmount    prometheus.Histogram

	// Issuer metrics
	IssuerPaymentsRecorded prometheus.Counter

	// Expense / advance metrics
	ExpensesRecorded prometheus.Counter
	AdvancesApproved prometheus.Counter

	// Workflow metrics
	WorkflowDuration *prometheus.HistogramVec
	WorkflowErrors   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		LedgerEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agencyledger_ledger_entries_total",
				Help: "Total ledger entries appended, by direction and origin kind",
			},
			[]string{"direction", "origin"},
		),
		TreasuryBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "agencyledger_treasury_balance",
			Help: "Current treasury balance",
		}),

		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_bookings_created_total",
			Help: "Total number of bookings created",
		}),
		BookingsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_bookings_cancelled_total",
			Help: "Total number of bookings cancelled",
		}),
		RefundsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_refunds_settled_total",
			Help: "Total number of refunds settled against the treasury",
		}),
		RefundAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agencyledger_refund_amount",
			Help:    "Refund amounts settled",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		}),

		PaymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_payments_recorded_total",
			Help: "Total number of customer payments recorded",
		}),
		PaymentsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_payments_deleted_total",
			Help: "Total number of customer payments deleted",
		}),
		PaymentAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agencyledger_payment_amount",
			Help:    "Customer payment amounts",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		}),

		IssuerPaymentsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_issuer_payments_recorded_total",
			Help: "Total number of payments made to issuing airlines",
		}),

		ExpensesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_expenses_recorded_total",
			Help: "Total number of expenses recorded",
		}),
		AdvancesApproved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agencyledger_advances_approved_total",
			Help: "Total number of advances approved",
		}),

		WorkflowDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agencyledger_workflow_duration_seconds",
				Help:    "Duration of money-moving workflows",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"workflow"},
		),
		WorkflowErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agencyledger_workflow_errors_total",
				Help: "Total workflow errors by type",
			},
			[]string{"workflow", "error_type"},
		),
	}
}

// RecordWorkflowError counts a failed money-moving workflow run. The
// error_type label is a coarse class, never the error text, to keep
// cardinality bounded.
func (m *Metrics) RecordWorkflowError(workflow string, err error) {
	m.WorkflowErrors.WithLabelValues(workflow, errorType(err)).Inc()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrConsistencyFailure):
		return "consistency"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidOrigin):
		return "validation"
	case errors.Is(err, domain.ErrExceedsRemaining),
		errors.Is(err, domain.ErrExceedsOwed),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrNotCancelled),
		errors.Is(err, domain.ErrNothingToRefund),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrAdvanceNotPending):
		return "business_rule"
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrIssuerNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
