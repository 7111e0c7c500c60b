package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half away from zero
		{"-1.005", -101, true},
		{" 2.50 ", 250, true},
		{"1,234.56", 123456, true},
		{"１２．５", 1250, true},
		{"￥18", 1800, true},
		{"0", 0, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1e20", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.out, got.Cents, tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}{Money{Cents: 2160}, Money{Cents: -5}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":21.60,"b":-0.05}`, string(b))

	var in struct {
		N Money  `json:"n"`
		S Money  `json:"s"`
		P *Money `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"n":3600,"s":"12.345","p":null}`), &in))
	assert.Equal(t, int64(360000), in.N.Cents)
	assert.Equal(t, int64(1235), in.S.Cents)
	assert.Nil(t, in.P)

	assert.Error(t, json.Unmarshal([]byte(`{"n":"abc"}`), &in))
}

func TestDateParsing(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, 3, 1), d)

	d, err = ParseDate("2025/12/31")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", d.String())

	_, err = ParseDate("31-12-2025")
	assert.ErrorIs(t, err, ErrInvalidDate)

	var v struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &v))
	assert.True(t, v.D.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &v))
	assert.Equal(t, 29, v.D.Day())

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-02-29"}`, string(b))
}

func TestMonthRange(t *testing.T) {
	cases := []struct {
		year, month int
		last        string
	}{
		{2025, 1, "2025-01-31"},
		{2024, 2, "2024-02-29"},
		{2025, 2, "2025-02-28"},
		{2025, 4, "2025-04-30"},
		{2025, 12, "2025-12-31"},
	}
	for _, tc := range cases {
		first, last := MonthRange(tc.year, tc.month)
		assert.Equal(t, 1, first.Day())
		assert.Equal(t, tc.last, last.String())
	}
}

func TestDateWithin(t *testing.T) {
	first, last := MonthRange(2025, 3)
	assert.True(t, NewDate(2025, 3, 1).Within(&first, &last))
	assert.True(t, NewDate(2025, 3, 31).Within(&first, &last))
	assert.False(t, NewDate(2025, 4, 1).Within(&first, &last))
	assert.False(t, NewDate(2025, 2, 28).Within(&first, &last))
	assert.True(t, NewDate(1999, 1, 1).Within(nil, &last))
	assert.True(t, NewDate(2099, 1, 1).Within(&first, nil))
}
