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

// IssuerRepository implements usecase.IssuerRepository.
type IssuerRepository struct {
	pool *pgxpool.Pool
}

// NewIssuerRepository creates a new IssuerRepository.
func NewIssuerRepository(pool *pgxpool.Pool) *IssuerRepository {
	return &IssuerRepository{pool: pool}
}

// Create inserts a new issuer.
func (r *IssuerRepository) Create(ctx context.Context, issuer *domain.Issuer) error {
	query := `
		INSERT INTO issuers (id, name, country, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		issuer.ID,
		issuer.Name,
		issuer.Country,
		issuer.CreatedBy,
		issuer.CreatedAt,
		issuer.UpdatedAt,
	)

	return err
}

// GetByID retrieves an issuer by ID.
func (r *IssuerRepository) GetByID(ctx context.Context, id string) (*domain.Issuer, error) {
	query := `SELECT id, name, country, created_by, created_at, updated_at FROM issuers WHERE id = $1`

	return scanIssuer(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an issuer with a FOR UPDATE lock. The lock
// serializes payable computations for the issuer.
func (r *IssuerRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Issuer, error) {
	query := `SELECT id, name, country, created_by, created_at, updated_at FROM issuers WHERE id = $1 FOR UPDATE`

	return scanIssuer(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// List lists issuers by name.
func (r *IssuerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Issuer, error) {
	query := `SELECT id, name, country, created_by, created_at, updated_at FROM issuers ORDER BY name LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issuers []*domain.Issuer
	for rows.Next() {
		issuer, err := scanIssuer(rows)
		if err != nil {
			return nil, err
		}
		issuers = append(issuers, issuer)
	}

	return issuers, rows.Err()
}

func scanIssuer(row rowScanner) (*domain.Issuer, error) {
	var issuer domain.Issuer

	err := row.Scan(
		&issuer.ID,
		&issuer.Name,
		&issuer.Country,
		&issuer.CreatedBy,
		&issuer.CreatedAt,
		&issuer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIssuerNotFound
		}

		return nil, err
	}

	return &issuer, nil
}

// IssuerPaymentRepository implements usecase.IssuerPaymentRepository.
type IssuerPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewIssuerPaymentRepository creates a new IssuerPaymentRepository.
func NewIssuerPaymentRepository(pool *pgxpool.Pool) *IssuerPaymentRepository {
	return &IssuerPaymentRepository{pool: pool}
}

const issuerPaymentColumns = `
	id, issuer_id, amount, method, paid_at, receipt_number, notes, created_by, created_at`

// Create inserts a new issuer payment inside the given transaction.
func (r *IssuerPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.IssuerPayment) error {
	query := `
		INSERT INTO issuer_payments (` + issuerPaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		payment.ID,
		payment.IssuerID,
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

// ListByIssuer lists payments made to an issuer, newest first.
func (r *IssuerPaymentRepository) ListByIssuer(ctx context.Context, issuerID string, limit, offset int) ([]*domain.IssuerPayment, error) {
	query := `SELECT ` + issuerPaymentColumns + ` FROM issuer_payments WHERE issuer_id = $1 ORDER BY paid_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, issuerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.IssuerPayment
	for rows.Next() {
		payment, err := scanIssuerPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// SumAmountByIssuer sums the payments made to an issuer inside the given
// transaction.
func (r *IssuerPaymentRepository) SumAmountByIssuer(ctx context.Context, tx usecase.Transaction, issuerID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM issuer_payments WHERE issuer_id = $1`

	var sum pgtype.Numeric
	if err := tx.(*Tx).PgxTx().QueryRow(ctx, query, issuerID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanIssuerPayment(row rowScanner) (*domain.IssuerPayment, error) {
	var (
		p      domain.IssuerPayment
		amount pgtype.Numeric
	)

	err := row.Scan(
		&p.ID,
		&p.IssuerID,
		&amount,
		&p.Method,
		&p.PaidAt,
		&p.ReceiptNumber,
		&p.Notes,
		&p.CreatedBy,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Amount = numericToDecimal(amount)

	return &p, nil
}
