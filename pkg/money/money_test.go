package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDecimal_RoundsToPence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"whole pounds", "12", 1200},
		{"exact pence", "12.34", 1234},
		{"rounds half up", "0.005", 1},
		{"rounds down", "0.004", 0},
		{"negative", "-3.50", -350},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			require.NoError(t, err)
			m := NewFromDecimal(d, GBP)
			assert.Equal(t, tt.expected, m.Amount())
		})
	}
}

func TestAdd_CurrencyMismatch(t *testing.T) {
	_, err := New(100, GBP).Add(New(100, "EUR"))
	assert.Error(t, err)
}

func TestSubtract(t *testing.T) {
	diff, err := New(1000, GBP).Subtract(New(250, GBP))
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount())
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []int64
		expected int64
	}{
		{"empty", nil, 0},
		{"single", []int64{1299}, 1299},
		{"even split", []int64{1000, 2000}, 1500},
		{"rounds half up", []int64{100, 101}, 101},
		{"three values", []int64{4500, 4500, 4650}, 4550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mean(tt.amounts))
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "£1,234.56", New(123456, GBP).Display())
}

func TestToDecimal(t *testing.T) {
	d := New(1234, GBP).ToDecimal()
	assert.True(t, d.Equal(decimal.RequireFromString("12.34")))
}
