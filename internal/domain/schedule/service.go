package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/metrics"
)

// Import-time duplicate filter thresholds. A transaction is considered
// already tracked when an existing entry's name is at least this similar,
// posts within dayTolerance days and the amounts differ by at most
// amountTolerance of the larger one.
const (
	nameSimilarityThreshold = 0.85
	dayTolerance            = 3
	amountTolerance         = 0.07
)

// Service manages scheduled outgoings. De-duplication passes are serialized
// with a mutex: two concurrent passes over the same collection could
// disagree on which entry is canonical.
type Service struct {
	repo    Repository
	metrics *metrics.Metrics
	logger  *slog.Logger

	dedupeMu sync.Mutex
}

// NewService creates a schedule service.
func NewService(repo Repository, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, metrics: m, logger: logger}
}

// Create validates and stores a new scheduled outgoing.
func (s *Service) Create(ctx context.Context, o NewOutgoing) (*ScheduledOutgoing, error) {
	if err := validate(o.DayOfMonth, o.AmountMinor); err != nil {
		return nil, err
	}
	return s.repo.Insert(ctx, o)
}

// List returns all scheduled outgoings.
func (s *Service) List(ctx context.Context) ([]ScheduledOutgoing, error) {
	return s.repo.List(ctx)
}

// Get returns one scheduled outgoing.
func (s *Service) Get(ctx context.Context, id int64) (*ScheduledOutgoing, error) {
	return s.repo.Get(ctx, id)
}

// Edit applies an update to an existing entry.
func (s *Service) Edit(ctx context.Context, id int64, u Update) (*ScheduledOutgoing, error) {
	if u.DayOfMonth != nil && (*u.DayOfMonth < 1 || *u.DayOfMonth > 31) {
		return nil, fmt.Errorf("day of month %d out of range", *u.DayOfMonth)
	}
	if u.AmountMinor != nil && *u.AmountMinor < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return s.repo.Update(ctx, id, u)
}

// Remove deletes one scheduled outgoing.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Deduplicate loads the full collection, resolves duplicates and deletes the
// redundant entries in one batch. Concurrent calls are serialized.
func (s *Service) Deduplicate(ctx context.Context) (Resolution, error) {
	s.dedupeMu.Lock()
	defer s.dedupeMu.Unlock()

	outgoings, err := s.repo.List(ctx)
	if err != nil {
		return Resolution{}, err
	}

	res := ResolveDuplicates(outgoings)
	if len(res.Removed) == 0 {
		return res, nil
	}

	ids := make([]int64, len(res.Removed))
	for i, o := range res.Removed {
		ids[i] = o.ID
	}
	if err := s.repo.DeleteBatch(ctx, ids); err != nil {
		return Resolution{}, err
	}

	s.metrics.DuplicatesRemoved.Add(float64(len(res.Removed)))
	s.logger.Info("scheduled outgoings de-duplicated",
		slog.Int("kept", len(res.Kept)),
		slog.Int("removed", len(res.Removed)),
	)
	return res, nil
}

// ImportFromTransaction creates a scheduled outgoing from a categorized
// transaction, extracting the day-of-month from its date. The import is
// skipped (returning nil, nil) when an existing entry already looks like the
// same bill: similar name, close day, close amount.
func (s *Service) ImportFromTransaction(ctx context.Context, tx ledger.CategorizedTransaction) (*ScheduledOutgoing, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	candidate := NewOutgoing{
		DayOfMonth:  tx.DayOfMonth(),
		AmountMinor: tx.AmountMinor,
		Merchant:    tx.Counterparty,
		Memo:        tx.Memo,
	}
	if dup := findLikelyDuplicate(candidate, existing); dup != nil {
		s.logger.Debug("import skipped, similar entry exists",
			slog.String("merchant", candidate.Merchant),
			slog.Int64("existing_id", dup.ID),
		)
		return nil, nil
	}
	return s.Create(ctx, candidate)
}

func findLikelyDuplicate(candidate NewOutgoing, existing []ScheduledOutgoing) *ScheduledOutgoing {
	name := ledger.NormalizeName(candidate.Merchant)
	if name == "" {
		name = ledger.NormalizeName(candidate.Memo)
	}
	for i, o := range existing {
		other := ledger.NormalizeName(o.Merchant)
		if other == "" {
			other = ledger.NormalizeName(o.Memo)
		}
		if nameSimilarity(name, other) < nameSimilarityThreshold {
			continue
		}
		if dayDistance(candidate.DayOfMonth, o.DayOfMonth) > dayTolerance {
			continue
		}
		if !amountsClose(candidate.AmountMinor, o.AmountMinor) {
			continue
		}
		return &existing[i]
	}
	return nil
}

// nameSimilarity is 1 minus the Levenshtein distance relative to the longer
// string, so identical strings score 1 and disjoint ones approach 0.
func nameSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// dayDistance wraps around the month boundary, so day 31 and day 1 are two
// days apart, not thirty.
func dayDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrapped := 31 - d; wrapped < d {
		d = wrapped
	}
	return d
}

func amountsClose(a, b int64) bool {
	if a == b {
		return true
	}
	larger := a
	if b > larger {
		larger = b
	}
	if larger == 0 {
		return true
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return float64(diff)/float64(larger) <= amountTolerance
}

func validate(dayOfMonth int, amountMinor int64) error {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return fmt.Errorf("day of month %d out of range", dayOfMonth)
	}
	if amountMinor < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}
