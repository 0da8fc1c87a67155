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

const expenseColumns = `
	id, title, amount, category, spent_at, notes, created_by, updated_by, created_at, updated_at`

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create inserts a new expense inside the given transaction.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		expense.ID,
		expense.Title,
		decimalToNumeric(expense.Amount),
		expense.Category,
		expense.SpentAt,
		expense.Notes,
		expense.CreatedBy,
		expense.UpdatedBy,
		expense.CreatedAt,
		expense.UpdatedAt,
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	return scanExpense(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate retrieves an expense by ID with a FOR UPDATE lock.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1 FOR UPDATE`

	return scanExpense(tx.(*Tx).PgxTx().QueryRow(ctx, query, id))
}

// Update rewrites an expense inside the given transaction.
func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	query := `
		UPDATE expenses
		SET title = $2, amount = $3, category = $4, spent_at = $5, notes = $6,
		    updated_by = $7, updated_at = $8
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		expense.ID,
		expense.Title,
		decimalToNumeric(expense.Amount),
		expense.Category,
		expense.SpentAt,
		expense.Notes,
		expense.UpdatedBy,
		expense.UpdatedAt,
	)

	return err
}

// Delete removes an expense inside the given transaction.
func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// List lists expenses, most recently spent first.
func (r *ExpenseRepository) List(ctx context.Context, limit, offset int) ([]*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY spent_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var (
		e      domain.Expense
		amount pgtype.Numeric
	)

	err := row.Scan(
		&e.ID,
		&e.Title,
		&amount,
		&e.Category,
		&e.SpentAt,
		&e.Notes,
		&e.CreatedBy,
		&e.UpdatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	e.Amount = numericToDecimal(amount)

	return &e, nil
}
