// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents so sums never drift. Input that cannot be
// parsed yields a NaN amount, which every arithmetic helper skips.
package core

import (
	"bytes"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is prefixed to formatted amounts.
const DefaultCurrencySymbol = "₹"

// MaxAmountCents bounds a single validated amount (10 trillion major units),
// leaving int64 headroom for sums over many records.
const MaxAmountCents int64 = 1_000_000_000_000_000

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Money is an amount in minor units (cents).
type Money struct {
	Cents int64
	nan   bool
}

// Cents builds a Money from minor units.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// NaN returns the sentinel for an amount that could not be parsed.
func NaN() Money {
	return Money{nan: true}
}

// ParseAmount converts a decimal string to Money, best effort.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two decimals. Anything unparseable, or too large for int64
// cents, becomes NaN. Sign is preserved; Validate rejects non-positive values.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("abc")    -> NaN
func ParseAmount(s string) Money {
	s = strings.TrimSpace(s)
	if s == "" {
		return NaN()
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return NaN()
	}
	return FromDecimal(d)
}

// FromDecimal rounds d half-up to cents.
func FromDecimal(d decimal.Decimal) Money {
	c := d.Round(2).Shift(2)
	if c.Abs().GreaterThan(maxCents) {
		return NaN()
	}
	return Money{Cents: c.IntPart()}
}

func (m Money) IsNaN() bool {
	return m.nan
}

func (m Money) IsZero() bool {
	return !m.nan && m.Cents == 0
}

// Add returns m+o, saturating at the int64 bounds. A NaN operand is treated as
// absent.
func (m Money) Add(o Money) Money {
	switch {
	case o.nan:
		return m
	case m.nan:
		return o
	}
	sum := m.Cents + o.Cents
	switch {
	case o.Cents > 0 && sum < m.Cents:
		sum = math.MaxInt64
	case o.Cents < 0 && sum > m.Cents:
		sum = math.MinInt64
	}
	return Money{Cents: sum}
}

// Sub returns m-o. A NaN operand is treated as absent.
func (m Money) Sub(o Money) Money {
	if o.nan {
		return m
	}
	return m.Add(Money{Cents: -o.Cents})
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents, nan: m.nan}
	}
	return m
}

// Cmp compares two amounts like strings.Compare. NaN compares as zero.
func (m Money) Cmp(o Money) int {
	a, b := m.value(), o.value()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m Money) value() int64 {
	if m.nan {
		return 0
	}
	return m.Cents
}

func (m Money) Validate() error {
	if m.nan || m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in major units for display and ratios only.
func (m Money) Float() float64 {
	if m.nan {
		return math.NaN()
	}
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	if m.nan {
		return "NaN"
	}
	return m.Decimal().StringFixed(2)
}

// Format renders the amount with a currency symbol, e.g. "₹12.00" or "-₹3.50".
func (m Money) Format(symbol string) string {
	if m.nan {
		return symbol + "NaN"
	}
	if m.Cents < 0 {
		return "-" + symbol + m.Abs().String()
	}
	return symbol + m.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	if m.nan {
		return []byte("null"), nil
	}
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or string. It never fails: malformed or
// missing input becomes NaN so one bad record cannot poison a whole payload.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = NaN()
		return nil
	}
	*m = ParseAmount(strings.Trim(string(data), `"`))
	return nil
}
