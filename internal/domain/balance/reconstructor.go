// Package balance reconstructs a running balance series from categorized
// transactions and keeps point-in-time snapshots of balances and overdrafts.
package balance

import (
	"sort"
	"time"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

// Point is one step of a reconstructed balance series: the transaction that
// moved the balance and the balance after applying it.
type Point struct {
	Date         time.Time   `json:"date"`
	Description  string      `json:"description"`
	Kind         ledger.Kind `json:"kind"`
	DeltaMinor   int64       `json:"delta_minor"`
	BalanceMinor int64       `json:"balance_minor"`
}

// Reconstruct replays income, outgoings and purchases over a starting
// balance and returns the balance after each transaction. Income adds to the
// balance; outgoings and purchases subtract their magnitude.
//
// The merged set is sorted by date with a stable sort, so transactions on
// the same day keep their arrival order: income first, then outgoings, then
// purchases, each in input order. Inputs are not modified and the series can
// be recomputed from the same data any number of times.
func Reconstruct(income, outgoings, purchases []ledger.CategorizedTransaction, startingMinor int64) []Point {
	merged := make([]ledger.CategorizedTransaction, 0, len(income)+len(outgoings)+len(purchases))
	merged = append(merged, income...)
	merged = append(merged, outgoings...)
	merged = append(merged, purchases...)
	if len(merged) == 0 {
		return nil
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date.Before(merged[j].Date)
	})

	points := make([]Point, 0, len(merged))
	running := startingMinor
	for _, tx := range merged {
		delta := tx.AmountMinor
		if tx.Kind != ledger.KindIncome {
			delta = -delta
		}
		running += delta
		points = append(points, Point{
			Date:         tx.Date,
			Description:  tx.Description(),
			Kind:         tx.Kind,
			DeltaMinor:   delta,
			BalanceMinor: running,
		})
	}
	return points
}
