package domain

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

const centsScale = 2

var hundred = decimal.NewFromInt(100)

// Money is an exact decimal currency amount. Add, Sub and MulQty never
// round; String is the only lossy conversion.
type Money struct {
	amount decimal.Decimal
}

func ZeroMoney() Money {
	return Money{}
}

func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d}
}

func MoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -centsScale)}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parsing money %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

func (m Money) MulQty(qty int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(qty))}
}

// Percent returns m * p / 100 rounded half away from zero to cents.
func (m Money) Percent(p decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(p).Div(hundred).Round(centsScale)}
}

func (m Money) Cmp(o Money) int {
	return m.amount.Cmp(o.amount)
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Max returns the larger of m and o.
func (m Money) Max(o Money) Money {
	if m.Cmp(o) >= 0 {
		return m
	}
	return o
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// String renders the amount for display, rounded to cents.
func (m Money) String() string {
	return m.amount.StringFixed(centsScale)
}

// wire keeps every significant digit; amounts already at cent precision
// are padded to two places so "10.5" and "10.50" encode the same way.
func (m Money) wire() string {
	if m.amount.Equal(m.amount.Round(centsScale)) {
		return m.amount.StringFixed(centsScale)
	}
	return m.amount.String()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.wire())), nil
}

// UnmarshalJSON accepts a quoted decimal string or a bare JSON number. Bare
// numbers are parsed from their literal text, never through float64.
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decoding money: %w", err)
	}
	m.amount = d
	return nil
}

// Qty is a whole-unit quantity. On the wire it may arrive as a JSON integer
// or as an integer decimal string.
type Qty int64

func (q *Qty) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	raw := string(bytes.Trim(data, `"`))
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*q = Qty(n)
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("decoding quantity %s: %w", data, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("decoding quantity %s: not a whole number", data)
	}
	*q = Qty(d.IntPart())
	return nil
}
