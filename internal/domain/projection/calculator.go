// Package projection estimates the position at the next pay date from the
// current month's categorized transactions.
package projection

import (
	"time"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

// Forecast is the projected monthly position. All amounts are pence.
type Forecast struct {
	MonthlyIncomeMinor    int64      `json:"monthly_income_minor"`
	MonthlyOutgoingsMinor int64      `json:"monthly_outgoings_minor"`
	MonthlySpendingMinor  int64      `json:"monthly_spending_minor"`
	SavingsPerMonthMinor  int64      `json:"savings_per_month_minor"`
	ProjectedBalanceMinor int64      `json:"projected_balance_minor"`
	NextIncomeDate        *time.Time `json:"next_income_date,omitempty"`
	AnchorDescription     string     `json:"anchor_description,omitempty"`
}

// Calculate builds a forecast from the three transaction buckets. The anchor
// is the largest single income (first in input order on a tie); its date,
// advanced month by month until strictly after now, is the next pay date.
// Savings is income minus outgoings minus spending, and the projected
// balance equals savings: the forecast describes one pay cycle, not an
// accumulated position.
//
// With no income there is no pay cycle to project into: the forecast is all
// zeros and NextIncomeDate is nil. That is a valid terminal result, not an
// error.
func Calculate(income, outgoings, purchases []ledger.CategorizedTransaction, now time.Time) Forecast {
	var f Forecast
	if len(income) == 0 {
		return f
	}
	for _, tx := range outgoings {
		f.MonthlyOutgoingsMinor += tx.AmountMinor
	}
	for _, tx := range purchases {
		f.MonthlySpendingMinor += tx.AmountMinor
	}

	anchor := income[0]
	for _, tx := range income {
		f.MonthlyIncomeMinor += tx.AmountMinor
		if tx.AmountMinor > anchor.AmountMinor {
			anchor = tx
		}
	}

	next := nextMonthlyOccurrence(anchor.Date, now)
	f.NextIncomeDate = &next
	f.AnchorDescription = anchor.Description()
	f.SavingsPerMonthMinor = f.MonthlyIncomeMinor - f.MonthlyOutgoingsMinor - f.MonthlySpendingMinor
	f.ProjectedBalanceMinor = f.SavingsPerMonthMinor
	return f
}

// nextMonthlyOccurrence advances from one month after the anchor date, a
// month at a time, until the result is strictly after now. The day of month
// is clamped to the target month's length, so an anchor on the 31st lands on
// the 30th or 28th in shorter months instead of spilling into the next one.
func nextMonthlyOccurrence(anchor, now time.Time) time.Time {
	year, month, day := anchor.Date()
	next := clampedDate(year, month+1, day, anchor.Location())
	for !next.After(now) {
		y, m, _ := next.Date()
		next = clampedDate(y, m+1, day, anchor.Location())
	}
	return next
}

func clampedDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
