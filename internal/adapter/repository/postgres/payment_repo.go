package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

const paymentColumns = `
	id, booking_id, amount, method, paid_at, receipt_number, notes, created_by, created_at`

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new payment inside the given transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		decimalToNumeric(payment.Amount),
		payment.Method,
		payment.PaidAt,
		payment.ReceiptNumber,
		payment.Notes,
		payment.CreatedBy,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves a payment by ID with a FOR UPDATE lock.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

	return scanPayment(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// Delete removes a payment inside the given transaction.
func (r *PaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// ListByBooking lists a booking's payments, newest first.
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID string, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY paid_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, bookingID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount pgtype.Numeric
	)

	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&amount,
		&p.Method,
		&p.PaidAt,
		&p.ReceiptNumber,
		&p.Notes,
		&p.CreatedBy,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	p.Amount = numericToDecimal(amount)

	return &p, nil
}
