package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mwhitmore/budget-agent/pkg/db"
)

// ErrNotFound is returned when a scheduled outgoing does not exist.
var ErrNotFound = errors.New("scheduled outgoing not found")

// Repository defines persistence for scheduled outgoings.
type Repository interface {
	Insert(ctx context.Context, o NewOutgoing) (*ScheduledOutgoing, error)
	List(ctx context.Context) ([]ScheduledOutgoing, error)
	Get(ctx context.Context, id int64) (*ScheduledOutgoing, error)
	Update(ctx context.Context, id int64, u Update) (*ScheduledOutgoing, error)
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) error
}

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	pool db.Querier
}

// NewPostgresRepository creates a scheduled outgoing repository.
func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const outgoingColumns = `id, day_of_month, amount_minor, merchant, memo, subcategory, account, created_at`

func scanOutgoing(row pgx.Row) (*ScheduledOutgoing, error) {
	var o ScheduledOutgoing
	err := row.Scan(&o.ID, &o.DayOfMonth, &o.AmountMinor, &o.Merchant, &o.Memo, &o.Subcategory, &o.Account, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Insert stores a new scheduled outgoing and returns the stored row.
func (r *PostgresRepository) Insert(ctx context.Context, o NewOutgoing) (*ScheduledOutgoing, error) {
	if o.Subcategory == "" {
		o.Subcategory = DefaultSubcategory
	}
	if o.Account == "" {
		o.Account = DefaultAccount
	}

	query := `
		INSERT INTO scheduled_outgoings (day_of_month, amount_minor, merchant, memo, subcategory, account)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + outgoingColumns

	stored, err := scanOutgoing(r.pool.QueryRow(ctx, query,
		o.DayOfMonth, o.AmountMinor, o.Merchant, o.Memo, o.Subcategory, o.Account))
	if err != nil {
		return nil, fmt.Errorf("failed to insert scheduled outgoing: %w", err)
	}
	return stored, nil
}

// List returns all scheduled outgoings ordered by day-of-month, then id.
func (r *PostgresRepository) List(ctx context.Context) ([]ScheduledOutgoing, error) {
	query := `
		SELECT ` + outgoingColumns + `
		FROM scheduled_outgoings
		ORDER BY day_of_month, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled outgoings: %w", err)
	}
	defer rows.Close()

	var outgoings []ScheduledOutgoing
	for rows.Next() {
		var o ScheduledOutgoing
		if err := rows.Scan(&o.ID, &o.DayOfMonth, &o.AmountMinor, &o.Merchant, &o.Memo, &o.Subcategory, &o.Account, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled outgoing: %w", err)
		}
		outgoings = append(outgoings, o)
	}
	return outgoings, rows.Err()
}

// Get returns one scheduled outgoing by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*ScheduledOutgoing, error) {
	query := `
		SELECT ` + outgoingColumns + `
		FROM scheduled_outgoings
		WHERE id = $1`
	return scanOutgoing(r.pool.QueryRow(ctx, query, id))
}

// Update applies the non-nil fields of u and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id int64, u Update) (*ScheduledOutgoing, error) {
	query := `
		UPDATE scheduled_outgoings
		SET day_of_month = COALESCE($2, day_of_month),
		    amount_minor = COALESCE($3, amount_minor),
		    merchant     = COALESCE($4, merchant),
		    memo         = COALESCE($5, memo),
		    subcategory  = COALESCE($6, subcategory),
		    account      = COALESCE($7, account)
		WHERE id = $1
		RETURNING ` + outgoingColumns

	return scanOutgoing(r.pool.QueryRow(ctx, query,
		id, u.DayOfMonth, u.AmountMinor, u.Merchant, u.Memo, u.Subcategory, u.Account))
}

// Delete removes one scheduled outgoing.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheduled_outgoings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled outgoing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBatch removes a set of scheduled outgoings in a single database
// transaction. Either all ids are removed or none are, so a de-duplication
// pass can never leave the collection partially pruned.
func (r *PostgresRepository) DeleteBatch(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	for _, id := range ids {
		if _, err := dbTx.Exec(ctx, `DELETE FROM scheduled_outgoings WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete scheduled outgoing %d: %w", id, err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch delete: %w", err)
	}
	return nil
}
