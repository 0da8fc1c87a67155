package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/agencyledger/internal/domain"
	"github.com/iho/agencyledger/internal/usecase"
)

// TreasuryRepository implements usecase.TreasuryRepository against the
// singleton treasury row and the append-only ledger_entries table. The
// 'main' row is created by migration and never by this code.
type TreasuryRepository struct {
	pool *pgxpool.Pool
}

// NewTreasuryRepository creates a new TreasuryRepository.
func NewTreasuryRepository(pool *pgxpool.Pool) *TreasuryRepository {
	return &TreasuryRepository{pool: pool}
}

const ledgerEntryColumns = `
	id, amount, direction, description, origin_kind, origin_id, actor, balance_after, created_at`

// GetAccount retrieves the treasury account.
func (r *TreasuryRepository) GetAccount(ctx context.Context) (*domain.TreasuryAccount, error) {
	query := `SELECT id, name, balance, version, created_at, updated_at FROM treasury_accounts WHERE id = $1`

	return scanTreasuryAccount(r.pool.QueryRow(ctx, query, domain.TreasuryAccountID))
}

// GetAccountForUpdate retrieves the treasury account with a FOR UPDATE
// lock, serializing all money movement behind it.
func (r *TreasuryRepository) GetAccountForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.TreasuryAccount, error) {
	query := `SELECT id, name, balance, version, created_at, updated_at FROM treasury_accounts WHERE id = $1 FOR UPDATE`

	return scanTreasuryAccount(tx.(*Tx).PgxTx().QueryRow(ctx, query, domain.TreasuryAccountID))
}

// UpdateBalance writes the new balance inside the given transaction.
func (r *TreasuryRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, balance decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE treasury_accounts
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE id = $1
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		domain.TreasuryAccountID,
		decimalToNumeric(balance),
		timeToPgTimestamptz(updatedAt),
	)

	return err
}

// AppendEntry appends a ledger entry inside the given transaction.
// There is no update or delete counterpart; the history is immutable.
func (r *TreasuryRepository) AppendEntry(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.(*Tx).PgxTx().Exec(ctx, query,
		entry.ID,
		decimalToNumeric(entry.Amount),
		entry.Direction,
		entry.Description,
		entry.OriginKind,
		entry.OriginID,
		entry.Actor,
		decimalToNumeric(entry.BalanceAfter),
		entry.CreatedAt,
	)

	return err
}

// ListEntries lists ledger entries, newest first.
func (r *TreasuryRepository) ListEntries(ctx context.Context, limit, offset int) ([]*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

// ListEntriesByOrigin lists entries for one origin kind, optionally
// narrowed to one origin row.
func (r *TreasuryRepository) ListEntriesByOrigin(ctx context.Context, kind domain.OriginKind, originID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE origin_kind = $1 AND ($2 = '' OR origin_id = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, kind, originID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

// SumEntries computes the signed sum of the whole entry history inside
// the given transaction. It must equal the stored balance at all times;
// callers read the balance in the same transaction so the comparison is
// a single snapshot.
func (r *TreasuryRepository) SumEntries(ctx context.Context, tx usecase.Transaction) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN direction = 'out' THEN -amount ELSE amount END), 0)
		FROM ledger_entries
	`

	var sum pgtype.Numeric
	if err := tx.(*Tx).PgxTx().QueryRow(ctx, query).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanTreasuryAccount(row rowScanner) (*domain.TreasuryAccount, error) {
	var (
		account domain.TreasuryAccount
		balance pgtype.Numeric
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&balance,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("treasury account row is missing; run migrations")
		}

		return nil, err
	}

	account.Balance = numericToDecimal(balance)

	return &account, nil
}

func scanLedgerEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	var entries []*domain.LedgerEntry

	for rows.Next() {
		var (
			entry        domain.LedgerEntry
			amount       pgtype.Numeric
			balanceAfter pgtype.Numeric
		)

		err := rows.Scan(
			&entry.ID,
			&amount,
			&entry.Direction,
			&entry.Description,
			&entry.OriginKind,
			&entry.OriginID,
			&entry.Actor,
			&balanceAfter,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		entry.Amount = numericToDecimal(amount)
		entry.BalanceAfter = numericToDecimal(balanceAfter)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
