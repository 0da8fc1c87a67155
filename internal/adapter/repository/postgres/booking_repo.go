package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

const bookingColumns = `
	id, booking_number, customer_id, issuer_id, airport, country, departure_date,
	cost_price, sell_price, initial_payment, total_paid, remaining_amount, status,
	cancel_reason, cancel_tax, cancel_commission,
	pay_before_cancel, cost_before_cancel, price_before_cancel,
	refund_amount, refund_settled_at,
	created_by, updated_by, created_at, updated_at`

// BookingRepository implements usecase.BookingRepository.
type BookingRepository struct {
	pool *pgxpool.Pool
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create inserts a new booking inside the given transaction.
func (r *BookingRepository) Create(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		booking.ID,
		booking.BookingNumber,
		booking.CustomerID,
		booking.IssuerID,
		booking.Airport,
		booking.Country,
		booking.DepartureDate,
		decimalToNumeric(booking.CostPrice),
		decimalToNumeric(booking.SellPrice),
		decimalToNumeric(booking.InitialPayment),
		decimalToNumeric(booking.TotalPaid),
		decimalToNumeric(booking.RemainingAmount),
		booking.Status,
		booking.CancelReason,
		decimalToNumeric(booking.CancelTax),
		decimalToNumeric(booking.CancelCommission),
		decimalToNumeric(booking.PayBeforeCancel),
		decimalToNumeric(booking.CostBeforeCancel),
		decimalToNumeric(booking.PriceBeforeCancel),
		decimalToNumeric(booking.RefundAmount),
		timePtrToPgTimestamptz(booking.RefundSettledAt),
		booking.CreatedBy,
		booking.UpdatedBy,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	return scanBooking(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a booking by ID with a FOR UPDATE lock.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	return scanBooking(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// Update rewrites the booking's mutable financial state.
func (r *BookingRepository) Update(ctx context.Context, tx usecase.Transaction, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET cost_price = $2, sell_price = $3, total_paid = $4, remaining_amount = $5,
		    status = $6, cancel_reason = $7, cancel_tax = $8, cancel_commission = $9,
		    pay_before_cancel = $10, cost_before_cancel = $11, price_before_cancel = $12,
		    refund_amount = $13, refund_settled_at = $14,
		    updated_by = $15, updated_at = $16
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		booking.ID,
		decimalToNumeric(booking.CostPrice),
		decimalToNumeric(booking.SellPrice),
		decimalToNumeric(booking.TotalPaid),
		decimalToNumeric(booking.RemainingAmount),
		booking.Status,
		booking.CancelReason,
		decimalToNumeric(booking.CancelTax),
		decimalToNumeric(booking.CancelCommission),
		decimalToNumeric(booking.PayBeforeCancel),
		decimalToNumeric(booking.CostBeforeCancel),
		decimalToNumeric(booking.PriceBeforeCancel),
		decimalToNumeric(booking.RefundAmount),
		timePtrToPgTimestamptz(booking.RefundSettledAt),
		booking.UpdatedBy,
		booking.UpdatedAt,
	)

	return err
}

// List lists bookings, newest first.
func (r *BookingRepository) List(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListByIssuer lists bookings for one issuer, newest first.
func (r *BookingRepository) ListByIssuer(ctx context.Context, issuerID string, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE issuer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, issuerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// SumCostPriceByIssuer sums the cost prices of an issuer's bookings
// inside the given transaction. Cancelled bookings contribute their
// repriced cost, which at that point is the cancellation tax.
func (r *BookingRepository) SumCostPriceByIssuer(ctx context.Context, tx usecase.Transaction, issuerID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(cost_price), 0) FROM bookings WHERE issuer_id = $1`

	var sum pgtype.Numeric
	if err := tx.(*Tx).PgxTx().QueryRow(ctx, query, issuerID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                 domain.Booking
		costPrice         pgtype.Numeric
		sellPrice         pgtype.Numeric
		initialPayment    pgtype.Numeric
		totalPaid         pgtype.Numeric
		remainingAmount   pgtype.Numeric
		cancelTax         pgtype.Numeric
		cancelCommission  pgtype.Numeric
		payBeforeCancel   pgtype.Numeric
		costBeforeCancel  pgtype.Numeric
		priceBeforeCancel pgtype.Numeric
		refundAmount      pgtype.Numeric
		refundSettledAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.CustomerID,
		&b.IssuerID,
		&b.Airport,
		&b.Country,
		&b.DepartureDate,
		&costPrice,
		&sellPrice,
		&initialPayment,
		&totalPaid,
		&remainingAmount,
		&b.Status,
		&b.CancelReason,
		&cancelTax,
		&cancelCommission,
		&payBeforeCancel,
		&costBeforeCancel,
		&priceBeforeCancel,
		&refundAmount,
		&refundSettledAt,
		&b.CreatedBy,
		&b.UpdatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	b.CostPrice = numericToDecimal(costPrice)
	b.SellPrice = numericToDecimal(sellPrice)
	b.InitialPayment = numericToDecimal(initialPayment)
	b.TotalPaid = numericToDecimal(totalPaid)
	b.RemainingAmount = numericToDecimal(remainingAmount)
	b.CancelTax = numericToDecimal(cancelTax)
	b.CancelCommission = numericToDecimal(cancelCommission)
	b.PayBeforeCancel = numericToDecimal(payBeforeCancel)
	b.CostBeforeCancel = numericToDecimal(costBeforeCancel)
	b.PriceBeforeCancel = numericToDecimal(priceBeforeCancel)
	b.RefundAmount = numericToDecimal(refundAmount)
	b.RefundSettledAt = pgTimestamptzToTimePtr(refundSettledAt)

	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
