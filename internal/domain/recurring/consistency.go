package recurring

import (
	"sort"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/money"
)

// ConsistentTransaction is a counterparty that appears across several months
// of data, represented by its first occurrence with the amount replaced by
// the mean over all occurrences.
type ConsistentTransaction struct {
	ledger.CategorizedTransaction
	AverageAmountMinor int64 `json:"average_amount_minor"`
	Occurrences        int   `json:"occurrences"`
	MonthsPresent      int   `json:"months_present"`
}

// ConsistencyThreshold returns the number of months a counterparty must be
// present in to count as consistent. With three or fewer months it must
// appear in all of them; beyond that, in at least 70% (never fewer than 2).
func ConsistencyThreshold(numMonths int) int {
	if numMonths <= 3 {
		return numMonths
	}
	threshold := numMonths * 7 / 10
	if threshold < 2 {
		threshold = 2
	}
	return threshold
}

// FindConsistent identifies transactions whose counterparty recurs across
// months. Input transactions are grouped by normalized counterparty and by
// the year-month they posted in; groups present in at least
// ConsistencyThreshold(numMonths) distinct months survive. Transactions
// without a counterparty or memo are skipped.
func FindConsistent(txs []ledger.CategorizedTransaction, numMonths int) []ConsistentTransaction {
	if len(txs) == 0 || numMonths <= 0 {
		return nil
	}

	type monthSet map[string][]ledger.CategorizedTransaction
	grouped := make(map[string]monthSet)
	order := make([]string, 0)

	for _, tx := range txs {
		key := ledger.NormalizeName(tx.Description())
		if key == "" {
			continue
		}
		monthKey := tx.Date.Format("2006-01")
		if _, seen := grouped[key]; !seen {
			grouped[key] = make(monthSet)
			order = append(order, key)
		}
		grouped[key][monthKey] = append(grouped[key][monthKey], tx)
	}

	threshold := ConsistencyThreshold(numMonths)

	var consistent []ConsistentTransaction
	for _, key := range order {
		months := grouped[key]
		if len(months) < threshold {
			continue
		}

		monthKeys := make([]string, 0, len(months))
		for mk := range months {
			monthKeys = append(monthKeys, mk)
		}
		sort.Strings(monthKeys)

		var amounts []int64
		var sample *ledger.CategorizedTransaction
		for _, mk := range monthKeys {
			for _, tx := range months[mk] {
				amounts = append(amounts, tx.AmountMinor)
				if sample == nil {
					s := tx
					sample = &s
				}
			}
		}

		representative := *sample
		representative.AmountMinor = money.Mean(amounts)
		consistent = append(consistent, ConsistentTransaction{
			CategorizedTransaction: representative,
			AverageAmountMinor:     representative.AmountMinor,
			Occurrences:            len(amounts),
			MonthsPresent:          len(months),
		})
	}
	return consistent
}
