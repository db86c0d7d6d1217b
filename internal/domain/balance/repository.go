package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mwhitmore/budget-agent/pkg/db"
)

// Snapshot is a recorded account balance at a point in time.
type Snapshot struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AmountMinor int64     `json:"amount_minor"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// OverdraftSnapshot is a recorded overdraft limit at a point in time.
type OverdraftSnapshot struct {
	ID          int64     `json:"id"`
	AmountMinor int64     `json:"amount_minor"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ErrNoSnapshot is returned when no snapshot has been recorded yet.
var ErrNoSnapshot = errors.New("no snapshot recorded")

// ReconstructedSnapshotName marks snapshots written by the nightly
// reconstruction job. They are excluded when seeding a new reconstruction,
// otherwise each run would re-apply every transaction on top of the last
// run's result.
const ReconstructedSnapshotName = "reconstructed"

// Repository defines persistence for balance and overdraft snapshots.
type Repository interface {
	InsertBalance(ctx context.Context, name string, amountMinor int64, recordedAt time.Time) (*Snapshot, error)
	LatestBalance(ctx context.Context) (*Snapshot, error)
	LatestUserBalance(ctx context.Context) (*Snapshot, error)
	ListBalances(ctx context.Context, limit int) ([]Snapshot, error)
	InsertOverdraft(ctx context.Context, amountMinor int64, recordedAt time.Time) (*OverdraftSnapshot, error)
	LatestOverdraft(ctx context.Context) (*OverdraftSnapshot, error)
	ListOverdrafts(ctx context.Context, limit int) ([]OverdraftSnapshot, error)
}

// PostgresRepository implements Repository on PostgreSQL.
type PostgresRepository struct {
	pool db.Querier
}

// NewPostgresRepository creates a snapshot repository.
func NewPostgresRepository(pool db.Querier) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// InsertBalance records a balance snapshot and returns the stored row.
func (r *PostgresRepository) InsertBalance(ctx context.Context, name string, amountMinor int64, recordedAt time.Time) (*Snapshot, error) {
	query := `
		INSERT INTO balances (name, amount_minor, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id, name, amount_minor, recorded_at`

	var s Snapshot
	err := r.pool.QueryRow(ctx, query, name, amountMinor, recordedAt).
		Scan(&s.ID, &s.Name, &s.AmountMinor, &s.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert balance snapshot: %w", err)
	}
	return &s, nil
}

// LatestBalance returns the most recent balance snapshot, or ErrNoSnapshot
// when none has been recorded.
func (r *PostgresRepository) LatestBalance(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT id, name, amount_minor, recorded_at
		FROM balances
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	var s Snapshot
	err := r.pool.QueryRow(ctx, query).
		Scan(&s.ID, &s.Name, &s.AmountMinor, &s.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest balance: %w", err)
	}
	return &s, nil
}

// LatestUserBalance returns the most recent snapshot recorded by a user,
// skipping reconstructed ones, or ErrNoSnapshot when none exists.
func (r *PostgresRepository) LatestUserBalance(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT id, name, amount_minor, recorded_at
		FROM balances
		WHERE name <> $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	var s Snapshot
	err := r.pool.QueryRow(ctx, query, ReconstructedSnapshotName).
		Scan(&s.ID, &s.Name, &s.AmountMinor, &s.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest user balance: %w", err)
	}
	return &s, nil
}

// ListBalances returns snapshots newest first. A limit of 0 returns
// everything.
func (r *PostgresRepository) ListBalances(ctx context.Context, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, name, amount_minor, recorded_at
		FROM balances
		ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Name, &s.AmountMinor, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// InsertOverdraft records an overdraft snapshot and returns the stored row.
func (r *PostgresRepository) InsertOverdraft(ctx context.Context, amountMinor int64, recordedAt time.Time) (*OverdraftSnapshot, error) {
	query := `
		INSERT INTO overdrafts (amount_minor, recorded_at)
		VALUES ($1, $2)
		RETURNING id, amount_minor, recorded_at`

	var s OverdraftSnapshot
	err := r.pool.QueryRow(ctx, query, amountMinor, recordedAt).
		Scan(&s.ID, &s.AmountMinor, &s.RecordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert overdraft snapshot: %w", err)
	}
	return &s, nil
}

// LatestOverdraft returns the most recent overdraft snapshot, or
// ErrNoSnapshot when none has been recorded.
func (r *PostgresRepository) LatestOverdraft(ctx context.Context) (*OverdraftSnapshot, error) {
	query := `
		SELECT id, amount_minor, recorded_at
		FROM overdrafts
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	var s OverdraftSnapshot
	err := r.pool.QueryRow(ctx, query).
		Scan(&s.ID, &s.AmountMinor, &s.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest overdraft: %w", err)
	}
	return &s, nil
}

// ListOverdrafts returns overdraft snapshots newest first. A limit of 0
// returns everything.
func (r *PostgresRepository) ListOverdrafts(ctx context.Context, limit int) ([]OverdraftSnapshot, error) {
	query := `
		SELECT id, amount_minor, recorded_at
		FROM overdrafts
		ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdraft snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []OverdraftSnapshot
	for rows.Next() {
		var s OverdraftSnapshot
		if err := rows.Scan(&s.ID, &s.AmountMinor, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan overdraft snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
