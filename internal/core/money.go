// Package core holds the tournament ledger domain: money and date values,
// the fee calculator, input validation and the summary types returned by
// the aggregator.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// Money is a currency amount stored as integer cents.
type Money struct {
	Cents int64
}

// Yuan returns Money for a whole number of currency units.
func Yuan(units int64) Money {
	return Money{Cents: units * 100}
}

// MoneyFromDecimal rounds d to two places, half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseMoney converts user-typed text into Money.
//
// Full-width digits and punctuation (as produced by CJK input methods) are
// narrowed first, thousands separators and currency signs are dropped, and
// anything beyond the second decimal is rounded half away from zero. Signed
// values are accepted; range checks belong to validation.
//
//	ParseMoney("3600")      -> 360000
//	ParseMoney("１２．５")    -> 1250
//	ParseMoney("1,234.565") -> 123457
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(width.Narrow.String(s))
	s = strings.TrimPrefix(s, "¥")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Shift(2) on values this large would overflow int64 cents.
	if d.Abs().GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d), nil
}

var maxAmount = decimal.New(1, 15)

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// IsNegative reports whether m is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// String renders m with exactly two decimals, e.g. "21.60".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns m as float64 for spreadsheet cells. Never use it for arithmetic.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// MarshalJSON encodes m as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	v, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
