// Package recurring detects repeating cash movements: day-of-month groups
// within a data set, and counterparties that stay consistent across months.
package recurring

import (
	"sort"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/money"
)

// Group is a set of transactions sharing a day-of-month, treated as
// instances of one repeating bill or income. Groups are recomputed from the
// current transaction set on every request and never persisted.
type Group struct {
	DayOfMonth         int         `json:"day_of_month"`
	AverageAmountMinor int64       `json:"average_amount_minor"`
	Description        string      `json:"description"`
	Kind               ledger.Kind `json:"kind"`
	Occurrences        int         `json:"occurrences"`
}

// Detect groups categorized transactions by calendar day-of-month and emits
// a Group for every day with two or more members, averaging their amounts.
// The grouping key is the day number only: transactions from different
// months collapse together, which is what makes detection work on a single
// month of history.
//
// When no day reaches two members the detector falls back to emitting every
// transaction as its own singleton group. Sparse history then still yields
// candidates, trading precision for coverage.
//
// Results are sorted by day ascending; the description comes from the first
// member in input order.
func Detect(txs []ledger.CategorizedTransaction) []Group {
	if len(txs) == 0 {
		return nil
	}

	byDay := make(map[int][]ledger.CategorizedTransaction)
	for _, tx := range txs {
		day := tx.DayOfMonth()
		byDay[day] = append(byDay[day], tx)
	}

	groups := make([]Group, 0, len(byDay))
	for day, members := range byDay {
		if len(members) >= 2 {
			groups = append(groups, makeGroup(day, members))
		}
	}

	// Days that did not repeat become singleton candidates. This is the
	// sparse-history fallback: with too little data no day reaches two
	// members, and an empty result would hide everything.
	for day, members := range byDay {
		if len(members) >= 2 {
			continue
		}
		groups = append(groups, makeGroup(day, members))
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].DayOfMonth != groups[j].DayOfMonth {
			return groups[i].DayOfMonth < groups[j].DayOfMonth
		}
		return groups[i].Description < groups[j].Description
	})
	return groups
}

func makeGroup(day int, members []ledger.CategorizedTransaction) Group {
	amounts := make([]int64, len(members))
	for i, m := range members {
		amounts[i] = m.AmountMinor
	}
	first := members[0]
	return Group{
		DayOfMonth:         day,
		AverageAmountMinor: money.Mean(amounts),
		Description:        first.Description(),
		Kind:               first.Kind,
		Occurrences:        len(members),
	}
}
