// Package summary turns categorized totals into natural-language prose via
// a text-generation model. Prompt construction is pure and tested; only the
// model call itself talks to the network.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
	"github.com/mwhitmore/budget-agent/pkg/money"
)

// Stats aggregates the categorized buckets for prompt context. Monthly
// averages equal the totals when only one month of data is present.
type Stats struct {
	NumMonths                int
	TotalIncomeMinor         int64
	TotalOutgoingsMinor      int64
	TotalPurchasesMinor      int64
	NumIncome                int
	NumOutgoings             int
	NumPurchases             int
	AvgMonthlyIncomeMinor    int64
	AvgMonthlyOutgoingsMinor int64
	AvgMonthlyPurchasesMinor int64
}

// BuildStats computes totals and per-month averages over the three buckets.
func BuildStats(income, outgoings, purchases []ledger.CategorizedTransaction, numMonths int) Stats {
	if numMonths < 1 {
		numMonths = 1
	}
	s := Stats{
		NumMonths:    numMonths,
		NumIncome:    len(income),
		NumOutgoings: len(outgoings),
		NumPurchases: len(purchases),
	}
	for _, tx := range income {
		s.TotalIncomeMinor += tx.AmountMinor
	}
	for _, tx := range outgoings {
		s.TotalOutgoingsMinor += tx.AmountMinor
	}
	for _, tx := range purchases {
		s.TotalPurchasesMinor += tx.AmountMinor
	}
	months := int64(numMonths)
	s.AvgMonthlyIncomeMinor = s.TotalIncomeMinor / months
	s.AvgMonthlyOutgoingsMinor = s.TotalOutgoingsMinor / months
	s.AvgMonthlyPurchasesMinor = s.TotalPurchasesMinor / months
	return s
}

// TotalSpentMinor is outgoings plus purchases.
func (s Stats) TotalSpentMinor() int64 {
	return s.TotalOutgoingsMinor + s.TotalPurchasesMinor
}

// NetPositionMinor is income minus everything spent.
func (s Stats) NetPositionMinor() int64 {
	return s.TotalIncomeMinor - s.TotalSpentMinor()
}

func display(amountMinor int64) string {
	return money.New(amountMinor, money.GBP).Display()
}

// transactionList renders one line per transaction, largest amount first.
func transactionList(txs []ledger.CategorizedTransaction, preposition string) string {
	sorted := make([]ledger.CategorizedTransaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AmountMinor > sorted[j].AmountMinor
	})

	lines := make([]string, len(sorted))
	for i, tx := range sorted {
		name := tx.Description()
		if name == "" {
			name = "Unknown"
		}
		lines[i] = fmt.Sprintf("- %s on day %d %s %s",
			display(tx.AmountMinor), tx.DayOfMonth(), preposition, name)
	}
	return strings.Join(lines, "\n")
}

func multiMonthContext(s Stats, avgMinor int64, label string) string {
	if s.NumMonths <= 1 {
		return ""
	}
	return fmt.Sprintf("\nMulti-Month Analysis (%d months):\n- Average Monthly %s: %s\n- These are consistent transactions appearing across multiple months\n",
		s.NumMonths, label, display(avgMinor))
}

// SpendingPrompt builds the prompt for a bills-and-direct-debits summary.
func SpendingPrompt(outgoings []ledger.CategorizedTransaction, s Stats) string {
	var b strings.Builder
	b.WriteString("Analyze these bank outgoings (bills, direct debits, standing orders) and provide a summary:\n\n")
	fmt.Fprintf(&b, "Total Spending: %s\n", display(s.TotalOutgoingsMinor))
	fmt.Fprintf(&b, "Number of Transactions: %d\n", len(outgoings))
	b.WriteString(multiMonthContext(s, s.AvgMonthlyOutgoingsMinor, "Outgoings"))
	b.WriteString("\nAll Transactions:\n")
	b.WriteString(transactionList(outgoings, "to"))
	b.WriteString("\n\nPlease provide:\n1. Key spending patterns\n2. Largest expense categories\n3. Any recommendations for budgeting\n")
	if s.NumMonths > 1 {
		b.WriteString("4. Reliability of these consistent outgoings for budgeting\n")
	}
	b.WriteString("\nKeep the response concise and actionable.")
	return b.String()
}

// PurchasesPrompt builds the prompt for a discretionary-spending summary.
func PurchasesPrompt(purchases []ledger.CategorizedTransaction, s Stats) string {
	var b strings.Builder
	b.WriteString("Analyze these card purchases and debit transactions (discretionary spending) and provide a summary:\n\n")
	fmt.Fprintf(&b, "Total Purchases: %s\n", display(s.TotalPurchasesMinor))
	fmt.Fprintf(&b, "Number of Transactions: %d\n", len(purchases))
	b.WriteString(multiMonthContext(s, s.AvgMonthlyPurchasesMinor, "Purchases"))
	b.WriteString("\nAll Transactions:\n")
	b.WriteString(transactionList(purchases, "at"))
	b.WriteString("\n\nPlease provide:\n1. Spending habits and patterns\n2. Most frequent merchants\n3. Opportunities to cut discretionary spending\n\nKeep the response concise and actionable.")
	return b.String()
}

// IncomePrompt builds the prompt for an income summary.
func IncomePrompt(income []ledger.CategorizedTransaction, s Stats) string {
	var b strings.Builder
	b.WriteString("Analyze these income transactions and provide a summary:\n\n")
	fmt.Fprintf(&b, "Total Income: %s\n", display(s.TotalIncomeMinor))
	fmt.Fprintf(&b, "Number of Transactions: %d\n", len(income))
	b.WriteString(multiMonthContext(s, s.AvgMonthlyIncomeMinor, "Income"))
	b.WriteString("\nAll Transactions:\n")
	b.WriteString(transactionList(income, "from"))
	b.WriteString("\n\nPlease provide:\n1. Income sources and stability\n2. Payment schedule patterns\n3. Any observations about income diversity\n\nKeep the response concise and actionable.")
	return b.String()
}

// ComprehensivePrompt builds the prompt for the full financial-health
// summary across all three buckets.
func ComprehensivePrompt(s Stats) string {
	consistentNote := ""
	if s.NumMonths > 1 {
		consistentNote = " (consistent across months)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Provide a comprehensive financial summary based on %d month(s) of bank data:\n\n", s.NumMonths)
	fmt.Fprintf(&b, "INCOME:\n- Total: %s\n- Average Monthly: %s\n- Transactions: %d%s\n\n",
		display(s.TotalIncomeMinor), display(s.AvgMonthlyIncomeMinor), s.NumIncome, consistentNote)
	fmt.Fprintf(&b, "OUTGOINGS (Bills & Direct Debits):\n- Total: %s\n- Average Monthly: %s\n- Transactions: %d%s\n\n",
		display(s.TotalOutgoingsMinor), display(s.AvgMonthlyOutgoingsMinor), s.NumOutgoings, consistentNote)
	fmt.Fprintf(&b, "PURCHASES (Discretionary Spending):\n- Total: %s\n- Average Monthly: %s\n- Transactions: %d\n\n",
		display(s.TotalPurchasesMinor), display(s.AvgMonthlyPurchasesMinor), s.NumPurchases)
	fmt.Fprintf(&b, "OVERALL:\n- Total Spent: %s\n- Net Position: %s\n\n",
		display(s.TotalSpentMinor()), display(s.NetPositionMinor()))
	b.WriteString("Please provide:\n1. Overall financial health assessment\n2. Key insights about spending vs income\n3. Actionable recommendations\n\nKeep the response concise and actionable.")
	return b.String()
}
