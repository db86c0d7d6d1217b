package schedule

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/metrics"
)

type fakeRepo struct {
	outgoings []ScheduledOutgoing
	nextID    int64
	deleted   []int64
}

func (f *fakeRepo) Insert(_ context.Context, o NewOutgoing) (*ScheduledOutgoing, error) {
	f.nextID++
	if o.Subcategory == "" {
		o.Subcategory = DefaultSubcategory
	}
	if o.Account == "" {
		o.Account = DefaultAccount
	}
	stored := ScheduledOutgoing{
		ID:          f.nextID,
		DayOfMonth:  o.DayOfMonth,
		AmountMinor: o.AmountMinor,
		Merchant:    o.Merchant,
		Memo:        o.Memo,
		Subcategory: o.Subcategory,
		Account:     o.Account,
	}
	f.outgoings = append(f.outgoings, stored)
	return &stored, nil
}

func (f *fakeRepo) List(context.Context) ([]ScheduledOutgoing, error) {
	return f.outgoings, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (*ScheduledOutgoing, error) {
	for i := range f.outgoings {
		if f.outgoings[i].ID == id {
			return &f.outgoings[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, id int64, _ Update) (*ScheduledOutgoing, error) {
	return f.Get(context.Background(), id)
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) DeleteBatch(_ context.Context, ids []int64) error {
	f.deleted = append(f.deleted, ids...)
	remaining := f.outgoings[:0]
	for _, o := range f.outgoings {
		keep := true
		for _, id := range ids {
			if o.ID == id {
				keep = false
				break
			}
		}
		if keep {
			remaining = append(remaining, o)
		}
	}
	f.outgoings = remaining
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, metrics.New(), slog.New(slog.DiscardHandler))
}

func TestDeduplicate_DeletesRedundantEntries(t *testing.T) {
	repo := &fakeRepo{
		outgoings: []ScheduledOutgoing{
			outgoing(1, "Netflix", "subscription", 899),
			outgoing(2, "NETFLIX", "Subscription", 1099),
			outgoing(3, "Vodafone", "mobile", 1200),
		},
	}
	svc := newTestService(repo)

	res, err := svc.Deduplicate(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Kept, 2)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestDeduplicate_NothingToRemove(t *testing.T) {
	repo := &fakeRepo{
		outgoings: []ScheduledOutgoing{
			outgoing(1, "Netflix", "subscription", 899),
		},
	}
	svc := newTestService(repo)

	res, err := svc.Deduplicate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	assert.Empty(t, repo.deleted)
}

func TestCreate_RejectsInvalidDay(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.Create(context.Background(), NewOutgoing{DayOfMonth: 0, AmountMinor: 100})
	assert.Error(t, err)
	_, err = svc.Create(context.Background(), NewOutgoing{DayOfMonth: 32, AmountMinor: 100})
	assert.Error(t, err)
}

func TestImportFromTransaction_CreatesEntry(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	tx := ledger.CategorizedTransaction{
		Kind:         ledger.KindOutgoing,
		Date:         time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		AmountMinor:  4500,
		Counterparty: "BRITISH GAS",
		Memo:         "BRITISH GAS DIRECT DEBIT",
	}

	stored, err := svc.ImportFromTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 15, stored.DayOfMonth)
	assert.Equal(t, int64(4500), stored.AmountMinor)
	assert.Equal(t, DefaultSubcategory, stored.Subcategory)
}

func TestImportFromTransaction_SkipsNearDuplicate(t *testing.T) {
	repo := &fakeRepo{
		nextID: 1,
		outgoings: []ScheduledOutgoing{
			{ID: 1, DayOfMonth: 14, AmountMinor: 4400, Merchant: "BRITISH GAS"},
		},
	}
	svc := newTestService(repo)

	tx := ledger.CategorizedTransaction{
		Kind:         ledger.KindOutgoing,
		Date:         time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		AmountMinor:  4500,
		Counterparty: "BRITISH GAS",
	}

	stored, err := svc.ImportFromTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Len(t, repo.outgoings, 1)
}

func TestImportFromTransaction_DifferentAmountIsNotDuplicate(t *testing.T) {
	repo := &fakeRepo{
		nextID: 1,
		outgoings: []ScheduledOutgoing{
			{ID: 1, DayOfMonth: 15, AmountMinor: 9000, Merchant: "BRITISH GAS"},
		},
	}
	svc := newTestService(repo)

	tx := ledger.CategorizedTransaction{
		Kind:         ledger.KindOutgoing,
		Date:         time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		AmountMinor:  4500,
		Counterparty: "BRITISH GAS",
	}

	stored, err := svc.ImportFromTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestNameSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, nameSimilarity("netflix", "netflix"))
	assert.Zero(t, nameSimilarity("", "netflix"))
	assert.Greater(t, nameSimilarity("british gas", "british  gas"), nameSimilarityThreshold)
	assert.Less(t, nameSimilarity("netflix", "vodafone"), nameSimilarityThreshold)
}

func TestDayDistanceWrapsMonthBoundary(t *testing.T) {
	assert.Equal(t, 2, dayDistance(31, 2))
	assert.Equal(t, 1, dayDistance(1, 31))
	assert.Equal(t, 0, dayDistance(10, 10))
	assert.Equal(t, 3, dayDistance(10, 13))
}
