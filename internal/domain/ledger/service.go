package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service exposes raw transaction operations with classification applied on
// read. Classification is always recomputed from the stored record, so an
// override change is visible on the next call.
type Service struct {
	repo       Repository
	classifier *Classifier
	logger     *slog.Logger
}

// NewService creates a ledger service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		classifier: NewClassifier(),
		logger:     logger,
	}
}

// Classifier exposes the rule engine for callers that classify their own
// snapshots (the statements pipeline).
func (s *Service) Classifier() *Classifier {
	return s.classifier
}

// ListRaw returns stored raw transactions, newest first.
func (s *Service) ListRaw(ctx context.Context, limit int) ([]RawTransaction, error) {
	return s.repo.ListAll(ctx, limit)
}

// ListRawByDateRange returns stored raw transactions posted within the range.
func (s *Service) ListRawByDateRange(ctx context.Context, start, end time.Time) ([]RawTransaction, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return s.repo.ListByDateRange(ctx, start, end)
}

// ListRawByMonth returns stored raw transactions for one calendar month.
func (s *Service) ListRawByMonth(ctx context.Context, year int, month time.Month) ([]RawTransaction, error) {
	return s.repo.ListByMonth(ctx, year, month)
}

// AvailableMonths lists months with data, newest first.
func (s *Service) AvailableMonths(ctx context.Context) ([]MonthRef, error) {
	return s.repo.AvailableMonths(ctx)
}

// Categorized loads every stored transaction and classifies it, returning
// the three live buckets. Unclassified records are dropped from the result;
// they degrade coverage, never correctness.
func (s *Service) Categorized(ctx context.Context) (income, outgoings, purchases []CategorizedTransaction, err error) {
	raw, err := s.repo.ListAll(ctx, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	all := s.classifier.ClassifyAll(raw)
	income, outgoings, purchases = Split(all)

	s.logger.Debug("classified stored transactions",
		slog.Int("total", len(raw)),
		slog.Int("income", len(income)),
		slog.Int("outgoings", len(outgoings)),
		slog.Int("purchases", len(purchases)),
	)
	return income, outgoings, purchases, nil
}

// SetOverride records a user correction for a transaction's category and
// returns the updated record with its new classification.
func (s *Service) SetOverride(ctx context.Context, id int64, override *string) (*RawTransaction, CategorizedTransaction, error) {
	updated, err := s.repo.UpdateOverride(ctx, id, override)
	if err != nil {
		return nil, CategorizedTransaction{}, err
	}

	categorized := s.classifier.Classify(*updated)
	s.logger.Info("transaction override updated",
		slog.Int64("id", id),
		slog.String("kind", string(categorized.Kind)),
	)
	return updated, categorized, nil
}

// ClearAll removes all stored raw transactions.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.repo.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Info("raw transactions cleared")
	return nil
}
