package schedule

import (
	"sort"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

// Resolution reports the outcome of a de-duplication pass. Count is the
// number of duplicate groups collapsed to one entry, not the number of
// removed rows: a group of three counts once but removes two.
type Resolution struct {
	Kept    []ScheduledOutgoing `json:"kept"`
	Removed []ScheduledOutgoing `json:"removed"`
	Count   int                 `json:"count"`
}

// ResolveDuplicates groups scheduled outgoings by normalized (merchant,
// memo) and keeps exactly one canonical entry per group. The canonical entry
// is the one with the highest amount; ties go to the lowest id, so the rule
// is deterministic for any input order. Entries in singleton groups are
// always kept.
//
// The function is pure: the caller decides what to do with Removed (the
// service deletes them in one batch).
func ResolveDuplicates(outgoings []ScheduledOutgoing) Resolution {
	type key struct{ merchant, memo string }

	groups := make(map[key][]ScheduledOutgoing)
	order := make([]key, 0)
	for _, o := range outgoings {
		k := key{
			merchant: ledger.NormalizeName(o.Merchant),
			memo:     ledger.NormalizeName(o.Memo),
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}

	var res Resolution
	for _, k := range order {
		members := groups[k]
		if len(members) == 1 {
			res.Kept = append(res.Kept, members[0])
			continue
		}

		canonical := members[0]
		for _, m := range members[1:] {
			if m.AmountMinor > canonical.AmountMinor ||
				(m.AmountMinor == canonical.AmountMinor && m.ID < canonical.ID) {
				canonical = m
			}
		}
		res.Kept = append(res.Kept, canonical)
		res.Count++
		for _, m := range members {
			if m.ID != canonical.ID {
				res.Removed = append(res.Removed, m)
			}
		}
	}

	sort.Slice(res.Removed, func(i, j int) bool { return res.Removed[i].ID < res.Removed[j].ID })
	return res
}
