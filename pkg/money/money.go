// Package money provides currency-safe financial arithmetic using integer
// minor units (pence). It wraps Rhymond/go-money for currency handling and
// shopspring/decimal for precise statistics over amounts.
package money

import (
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// GBP is the default currency for bank statement data.
const GBP = gomoney.GBP

// Money represents a monetary amount in minor units with its currency.
type Money struct {
	m *gomoney.Money
}

// New creates Money from an amount in minor units (pence for GBP).
func New(amountMinor int64, currencyCode string) *Money {
	return &Money{m: gomoney.New(amountMinor, currencyCode)}
}

// NewFromDecimal creates Money from a decimal amount in major units.
// The value is rounded to the currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := gomoney.GetCurrency(currencyCode)
	if currency == nil {
		currency = gomoney.GetCurrency(GBP)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	minor := amount.Mul(multiplier).Round(0).IntPart()
	return New(minor, currency.Code)
}

// Zero returns a zero amount in the given currency.
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO currency code.
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return GBP
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m.Amount() == 0
}

// IsNegative reports whether the amount is below zero.
func (m *Money) IsNegative() bool {
	return m.Amount() < 0
}

// Abs returns the absolute value.
func (m *Money) Abs() *Money {
	return New(abs(m.Amount()), m.Currency())
}

// Negate returns the amount with its sign flipped.
func (m *Money) Negate() *Money {
	return New(-m.Amount(), m.Currency())
}

// Add returns the sum of two amounts. Currencies must match.
func (m *Money) Add(other *Money) (*Money, error) {
	if m.Currency() != other.Currency() {
		return nil, fmt.Errorf("currency mismatch: %s vs %s", m.Currency(), other.Currency())
	}
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, err
	}
	return &Money{m: sum}, nil
}

// MustAdd is Add for amounts known to share a currency.
func (m *Money) MustAdd(other *Money) *Money {
	sum, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return sum
}

// Subtract returns the difference of two amounts. Currencies must match.
func (m *Money) Subtract(other *Money) (*Money, error) {
	return m.Add(other.Negate())
}

// Compare returns -1, 0 or 1 ordering m against other.
func (m *Money) Compare(other *Money) int {
	switch {
	case m.Amount() < other.Amount():
		return -1
	case m.Amount() > other.Amount():
		return 1
	default:
		return 0
	}
}

// ToDecimal converts the amount to major units as a decimal.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	divisor := decimal.New(1, int32(currency.Fraction))
	return decimal.NewFromInt(m.m.Amount()).Div(divisor)
}

// Display returns the localized string, e.g. "£1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return gomoney.New(0, GBP).Display()
	}
	return m.m.Display()
}

// String implements fmt.Stringer.
func (m *Money) String() string {
	return m.Display()
}

// Mean returns the mean of the given minor-unit amounts, rounded half up to
// the nearest minor unit. An empty input yields zero.
func Mean(amountsMinor []int64) int64 {
	if len(amountsMinor) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, a := range amountsMinor {
		sum = sum.Add(decimal.NewFromInt(a))
	}
	return sum.Div(decimal.NewFromInt(int64(len(amountsMinor)))).Round(0).IntPart()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
