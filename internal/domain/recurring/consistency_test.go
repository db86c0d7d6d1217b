package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitmore/budget-agent/internal/domain/ledger"
)

func monthTx(id int64, year int, month time.Month, amountMinor int64, counterparty string) ledger.CategorizedTransaction {
	return ledger.CategorizedTransaction{
		ID:           id,
		Kind:         ledger.KindOutgoing,
		Date:         time.Date(year, month, 15, 0, 0, 0, 0, time.UTC),
		AmountMinor:  amountMinor,
		Counterparty: counterparty,
	}
}

func TestConsistencyThreshold(t *testing.T) {
	tests := []struct {
		numMonths int
		want      int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{4, 2},
		{5, 3},
		{6, 4},
		{10, 7},
		{12, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConsistencyThreshold(tt.numMonths), "months=%d", tt.numMonths)
	}
}

func TestFindConsistentRequiresAllMonthsWhenFew(t *testing.T) {
	txs := []ledger.CategorizedTransaction{
		monthTx(1, 2025, time.January, 899, "NETFLIX.COM"),
		monthTx(2, 2025, time.February, 899, "NETFLIX.COM"),
		monthTx(3, 2025, time.March, 899, "NETFLIX.COM"),
		// Present in only two of three months.
		monthTx(4, 2025, time.January, 3500, "EDF ENERGY"),
		monthTx(5, 2025, time.March, 3500, "EDF ENERGY"),
	}

	got := FindConsistent(txs, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "NETFLIX.COM", got[0].Counterparty)
	assert.Equal(t, 3, got[0].MonthsPresent)
	assert.Equal(t, 3, got[0].Occurrences)
}

func TestFindConsistentSeventyPercentBeyondThreeMonths(t *testing.T) {
	// Threshold for 5 months is 3; present in 3 of 5 qualifies.
	txs := []ledger.CategorizedTransaction{
		monthTx(1, 2025, time.January, 1000, "SPOTIFY"),
		monthTx(2, 2025, time.March, 1200, "SPOTIFY"),
		monthTx(3, 2025, time.May, 1100, "SPOTIFY"),
	}

	got := FindConsistent(txs, 5)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1100), got[0].AverageAmountMinor)
	assert.Equal(t, int64(1100), got[0].AmountMinor)
}

func TestFindConsistentAveragesAcrossAllOccurrences(t *testing.T) {
	txs := []ledger.CategorizedTransaction{
		monthTx(1, 2025, time.January, 900, "GYM"),
		monthTx(2, 2025, time.January, 900, "GYM"),
		monthTx(3, 2025, time.February, 1200, "GYM"),
	}

	got := FindConsistent(txs, 2)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Occurrences)
	assert.Equal(t, 2, got[0].MonthsPresent)
	assert.Equal(t, int64(1000), got[0].AverageAmountMinor)
}

func TestFindConsistentNormalizesCounterpartyCase(t *testing.T) {
	txs := []ledger.CategorizedTransaction{
		monthTx(1, 2025, time.January, 500, "Amazon Prime"),
		monthTx(2, 2025, time.February, 500, "AMAZON PRIME"),
	}

	got := FindConsistent(txs, 2)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].MonthsPresent)
}

func TestFindConsistentSkipsBlankDescriptions(t *testing.T) {
	blank := monthTx(1, 2025, time.January, 500, "")
	blank.Memo = ""

	got := FindConsistent([]ledger.CategorizedTransaction{blank}, 1)
	assert.Nil(t, got)
	assert.Nil(t, FindConsistent(nil, 3))
}
