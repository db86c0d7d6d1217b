package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhitmore/budget-agent/pkg/db"
)

// Repository defines persistence for raw transactions.
type Repository interface {
	BulkInsert(ctx context.Context, txs []RawTransaction) (int, error)
	ListAll(ctx context.Context, limit int) ([]RawTransaction, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]RawTransaction, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]RawTransaction, error)
	AvailableMonths(ctx context.Context) ([]MonthRef, error)
	UpdateOverride(ctx context.Context, id int64, override *string) (*RawTransaction, error)
	ClearAll(ctx context.Context) error
}

// MonthRef identifies a calendar month that has transaction data.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	pool db.Querier
}

// NewPostgresRepository creates a raw transaction repository.
func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const rawTransactionColumns = `id, transaction_number, transaction_date, account, amount_minor, subcategory, override_subcategory, memo, created_at`

// BulkInsert stores a batch of raw transactions in a single database
// transaction and returns the number inserted.
func (r *PostgresRepository) BulkInsert(ctx context.Context, txs []RawTransaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	query := `
		INSERT INTO raw_transactions (transaction_number, transaction_date, account, amount_minor, subcategory, memo)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, t := range txs {
		if _, err := dbTx.Exec(ctx, query,
			t.TransactionNumber,
			t.Date,
			t.Account,
			t.AmountMinor,
			t.Subcategory,
			t.Memo,
		); err != nil {
			return 0, fmt.Errorf("failed to insert raw transaction: %w", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit raw transactions: %w", err)
	}
	return len(txs), nil
}

// ListAll returns raw transactions ordered by date descending. A limit of 0
// returns everything.
func (r *PostgresRepository) ListAll(ctx context.Context, limit int) ([]RawTransaction, error) {
	query := `
		SELECT ` + rawTransactionColumns + `
		FROM raw_transactions
		ORDER BY transaction_date DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return r.queryTransactions(ctx, query, args...)
}

// ListByDateRange returns raw transactions posted within [start, end],
// ordered by date ascending.
func (r *PostgresRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]RawTransaction, error) {
	query := `
		SELECT ` + rawTransactionColumns + `
		FROM raw_transactions
		WHERE transaction_date >= $1 AND transaction_date <= $2
		ORDER BY transaction_date ASC, id ASC`
	return r.queryTransactions(ctx, query, start, end)
}

// ListByMonth returns raw transactions for a single calendar month.
func (r *PostgresRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]RawTransaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return r.ListByDateRange(ctx, start, end)
}

// AvailableMonths lists the year-month pairs that have data, newest first.
func (r *PostgresRepository) AvailableMonths(ctx context.Context) ([]MonthRef, error) {
	query := `
		SELECT DISTINCT
			EXTRACT(YEAR FROM transaction_date)::int AS year,
			EXTRACT(MONTH FROM transaction_date)::int AS month
		FROM raw_transactions
		ORDER BY year DESC, month DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list available months: %w", err)
	}
	defer rows.Close()

	var months []MonthRef
	for rows.Next() {
		var m MonthRef
		if err := rows.Scan(&m.Year, &m.Month); err != nil {
			return nil, fmt.Errorf("failed to scan month: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// UpdateOverride sets or clears the override subcategory on a transaction
// and returns the updated record. A nil override clears the correction.
func (r *PostgresRepository) UpdateOverride(ctx context.Context, id int64, override *string) (*RawTransaction, error) {
	query := `
		UPDATE raw_transactions
		SET override_subcategory = $2
		WHERE id = $1
		RETURNING ` + rawTransactionColumns

	var t RawTransaction
	err := r.pool.QueryRow(ctx, query, id, override).Scan(
		&t.ID,
		&t.TransactionNumber,
		&t.Date,
		&t.Account,
		&t.AmountMinor,
		&t.Subcategory,
		&t.OverrideSubcategory,
		&t.Memo,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update override: %w", err)
	}
	return &t, nil
}

// ClearAll deletes every raw transaction (bulk-clear).
func (r *PostgresRepository) ClearAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM raw_transactions`); err != nil {
		return fmt.Errorf("failed to clear raw transactions: %w", err)
	}
	return nil
}

func (r *PostgresRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]RawTransaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query raw transactions: %w", err)
	}
	defer rows.Close()

	var txs []RawTransaction
	for rows.Next() {
		var t RawTransaction
		if err := rows.Scan(
			&t.ID,
			&t.TransactionNumber,
			&t.Date,
			&t.Account,
			&t.AmountMinor,
			&t.Subcategory,
			&t.OverrideSubcategory,
			&t.Memo,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan raw transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
