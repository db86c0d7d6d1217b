package balance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

// Ledger is the slice of the ledger service the balance domain needs.
type Ledger interface {
	Categorized(ctx context.Context) (income, outgoings, purchases []ledger.CategorizedTransaction, err error)
}

// Service reconstructs balance series and records snapshots.
type Service struct {
	repo   Repository
	ledger Ledger
	logger *slog.Logger
}

// NewService creates a balance service.
func NewService(repo Repository, ledger Ledger, logger *slog.Logger) *Service {
	return &Service{repo: repo, ledger: ledger, logger: logger}
}

// Series reconstructs the running balance over every stored transaction,
// seeded from the latest user-recorded balance snapshot. Snapshots written
// by SnapshotCurrent are skipped as seeds: they already include every
// transaction, so seeding from one would apply the whole set twice. When no
// snapshot exists the series starts from zero.
func (s *Service) Series(ctx context.Context) ([]Point, error) {
	income, outgoings, purchases, err := s.ledger.Categorized(ctx)
	if err != nil {
		return nil, err
	}

	var starting int64
	snap, err := s.repo.LatestUserBalance(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.logger.Debug("no balance snapshot recorded, series starts at zero")
	case err != nil:
		return nil, err
	default:
		starting = snap.AmountMinor
	}

	points := Reconstruct(income, outgoings, purchases, starting)
	s.logger.Debug("balance series reconstructed",
		slog.Int("points", len(points)),
		slog.Int64("starting_minor", starting),
	)
	return points, nil
}

// SeriesFrom reconstructs the running balance from an explicit starting
// amount, ignoring any recorded snapshot.
func (s *Service) SeriesFrom(ctx context.Context, startingMinor int64) ([]Point, error) {
	income, outgoings, purchases, err := s.ledger.Categorized(ctx)
	if err != nil {
		return nil, err
	}
	return Reconstruct(income, outgoings, purchases, startingMinor), nil
}

// RecordBalance stores a balance snapshot taken now.
func (s *Service) RecordBalance(ctx context.Context, name string, amountMinor int64) (*Snapshot, error) {
	snap, err := s.repo.InsertBalance(ctx, name, amountMinor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("balance snapshot recorded",
		slog.String("name", name),
		slog.Int64("amount_minor", amountMinor),
	)
	return snap, nil
}

// RecordOverdraft stores an overdraft snapshot taken now.
func (s *Service) RecordOverdraft(ctx context.Context, amountMinor int64) (*OverdraftSnapshot, error) {
	snap, err := s.repo.InsertOverdraft(ctx, amountMinor, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("overdraft snapshot recorded", slog.Int64("amount_minor", amountMinor))
	return snap, nil
}

// Snapshots lists recorded balance snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	return s.repo.ListBalances(ctx, limit)
}

// Overdrafts lists recorded overdraft snapshots, newest first.
func (s *Service) Overdrafts(ctx context.Context, limit int) ([]OverdraftSnapshot, error) {
	return s.repo.ListOverdrafts(ctx, limit)
}

// Latest returns the most recent balance and overdraft snapshots. Either may
// be nil when nothing has been recorded.
func (s *Service) Latest(ctx context.Context) (*Snapshot, *OverdraftSnapshot, error) {
	bal, err := s.repo.LatestBalance(ctx)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return nil, nil, err
	}
	od, err := s.repo.LatestOverdraft(ctx)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return nil, nil, err
	}
	return bal, od, nil
}

// SnapshotCurrent recomputes the running balance and records its final value
// as a snapshot named ReconstructedSnapshotName. The reconstruction always
// seeds from the latest user-recorded snapshot, so running the job any
// number of times over an unchanged transaction set records the same value.
func (s *Service) SnapshotCurrent(ctx context.Context) error {
	points, err := s.Series(ctx)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		s.logger.Debug("no transactions, skipping balance snapshot")
		return nil
	}
	final := points[len(points)-1].BalanceMinor
	_, err = s.RecordBalance(ctx, ReconstructedSnapshotName, final)
	return err
}
