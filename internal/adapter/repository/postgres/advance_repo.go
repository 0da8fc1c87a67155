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

const advanceColumns = `
	id, requested_by, amount, reason, status, approved_by, approved_at, created_at, updated_at`

// AdvanceRepository implements usecase.AdvanceRepository.
type AdvanceRepository struct {
	pool *pgxpool.Pool
}

// NewAdvanceRepository creates a new AdvanceRepository.
func NewAdvanceRepository(pool *pgxpool.Pool) *AdvanceRepository {
	return &AdvanceRepository{pool: pool}
}

// Create inserts a new advance inside the given transaction.
func (r *AdvanceRepository) Create(ctx context.Context, tx usecase.Transaction, advance *domain.Advance) error {
	query := `
		INSERT INTO advances (` + advanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		advance.ID,
		advance.RequestedBy,
		decimalToNumeric(advance.Amount),
		advance.Reason,
		advance.Status,
		advance.ApprovedBy,
		timePtrToPgTimestamptz(advance.ApprovedAt),
		advance.CreatedAt,
		advance.UpdatedAt,
	)

	return err
}

// GetByID retrieves an advance by ID.
func (r *AdvanceRepository) GetByID(ctx context.Context, id string) (*domain.Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM advances WHERE id = $1`

	return scanAdvance(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an advance by ID with a FOR UPDATE lock.
func (r *AdvanceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM advances WHERE id = $1 FOR UPDATE`

	return scanAdvance(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// Update rewrites an advance inside the given transaction.
func (r *AdvanceRepository) Update(ctx context.Context, tx usecase.Transaction, advance *domain.Advance) error {
	query := `
		UPDATE advances
		SET status = $2, approved_by = $3, approved_at = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		advance.ID,
		advance.Status,
		advance.ApprovedBy,
		timePtrToPgTimestamptz(advance.ApprovedAt),
		advance.UpdatedAt,
	)

	return err
}

// Delete removes an advance inside the given transaction.
func (r *AdvanceRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `DELETE FROM advances WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAdvanceNotFound
	}

	return nil
}

// List lists advances, newest first.
func (r *AdvanceRepository) List(ctx context.Context, limit, offset int) ([]*domain.Advance, error) {
	query := `SELECT ` + advanceColumns + ` FROM advances ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []*domain.Advance
	for rows.Next() {
		advance, err := scanAdvance(rows)
		if err != nil {
			return nil, err
		}
		advances = append(advances, advance)
	}

	return advances, rows.Err()
}

func scanAdvance(row rowScanner) (*domain.Advance, error) {
	var (
		a          domain.Advance
		amount     pgtype.Numeric
		approvedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID,
		&a.RequestedBy,
		&amount,
		&a.Reason,
		&a.Status,
		&a.ApprovedBy,
		&approvedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdvanceNotFound
		}

		return nil, err
	}

	a.Amount = numericToDecimal(amount)
	a.ApprovedAt = pgTimestamptzToTimePtr(approvedAt)

	return &a, nil
}
