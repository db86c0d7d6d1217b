package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

func projTx(kind ledger.Kind, date time.Time, amountMinor int64, counterparty string) ledger.CategorizedTransaction {
	return ledger.CategorizedTransaction{
		Kind:         kind,
		Date:         date,
		AmountMinor:  amountMinor,
		Counterparty: counterparty,
	}
}

func TestCalculateSumsAndSavings(t *testing.T) {
	now := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	payday := time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC)

	income := []ledger.CategorizedTransaction{
		projTx(ledger.KindIncome, payday, 250000, "EMPLOYER LTD"),
		projTx(ledger.KindIncome, payday.AddDate(0, 0, -10), 5000, "REFUND"),
	}
	outgoings := []ledger.CategorizedTransaction{
		projTx(ledger.KindOutgoing, payday, 80000, "RENT"),
		projTx(ledger.KindOutgoing, payday, 4500, "BRITISH GAS"),
	}
	purchases := []ledger.CategorizedTransaction{
		projTx(ledger.KindPurchase, payday, 30000, "TESCO"),
	}

	f := Calculate(income, outgoings, purchases, now)
	assert.Equal(t, int64(255000), f.MonthlyIncomeMinor)
	assert.Equal(t, int64(84500), f.MonthlyOutgoingsMinor)
	assert.Equal(t, int64(30000), f.MonthlySpendingMinor)
	assert.Equal(t, int64(140500), f.SavingsPerMonthMinor)
	assert.Equal(t, f.SavingsPerMonthMinor, f.ProjectedBalanceMinor)
	assert.Equal(t, "EMPLOYER LTD", f.AnchorDescription)
}

func TestCalculateAnchorIsLargestIncome(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	small := projTx(ledger.KindIncome, time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC), 1000, "SIDE GIG")
	large := projTx(ledger.KindIncome, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), 250000, "EMPLOYER LTD")

	f := Calculate([]ledger.CategorizedTransaction{small, large}, nil, nil, now)
	require.NotNil(t, f.NextIncomeDate)
	assert.Equal(t, time.Date(2025, time.March, 28, 0, 0, 0, 0, time.UTC), *f.NextIncomeDate)
	assert.Equal(t, "EMPLOYER LTD", f.AnchorDescription)
}

func TestCalculateAnchorTieKeepsFirst(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	first := projTx(ledger.KindIncome, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC), 5000, "FIRST")
	second := projTx(ledger.KindIncome, time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC), 5000, "SECOND")

	f := Calculate([]ledger.CategorizedTransaction{first, second}, nil, nil, now)
	assert.Equal(t, "FIRST", f.AnchorDescription)
}

func TestCalculateNextIncomeStrictlyAfterNow(t *testing.T) {
	// Anchor day equals today: the next occurrence is a month out.
	anchor := time.Date(2025, time.February, 25, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC)

	f := Calculate([]ledger.CategorizedTransaction{
		projTx(ledger.KindIncome, anchor, 250000, "EMPLOYER LTD"),
	}, nil, nil, now)
	require.NotNil(t, f.NextIncomeDate)
	assert.Equal(t, time.Date(2025, time.April, 25, 0, 0, 0, 0, time.UTC), *f.NextIncomeDate)
}

func TestCalculateClampsDayInShortMonths(t *testing.T) {
	anchor := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC)

	f := Calculate([]ledger.CategorizedTransaction{
		projTx(ledger.KindIncome, anchor, 250000, "EMPLOYER LTD"),
	}, nil, nil, now)
	require.NotNil(t, f.NextIncomeDate)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), *f.NextIncomeDate)
}

func TestCalculateNoIncomeIsZeroValued(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	outgoings := []ledger.CategorizedTransaction{
		projTx(ledger.KindOutgoing, now, 4500, "BRITISH GAS"),
	}

	f := Calculate(nil, outgoings, nil, now)
	assert.Equal(t, Forecast{}, f)
	assert.Nil(t, f.NextIncomeDate)
}
