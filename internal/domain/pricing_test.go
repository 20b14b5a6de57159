package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestClampPercentage(t *testing.T) {
	assert.True(t, ClampPercentage(pct("-5")).Equal(pct("0")))
	assert.True(t, ClampPercentage(pct("0")).Equal(pct("0")))
	assert.True(t, ClampPercentage(pct("37.5")).Equal(pct("37.5")))
	assert.True(t, ClampPercentage(pct("100")).Equal(pct("100")))
	assert.True(t, ClampPercentage(pct("150")).Equal(pct("100")))
}

func TestDiscountAmount_ClampedAbove100(t *testing.T) {
	subtotal := moneyOf("48.60")

	assert.True(t, DiscountAmount(subtotal, pct("150")).Equal(DiscountAmount(subtotal, pct("100"))))
	assert.True(t, DiscountAmount(subtotal, pct("100")).Equal(subtotal))
	assert.True(t, DiscountAmount(subtotal, pct("-20")).IsZero())
}

func TestDiscountAmount_Monotonic(t *testing.T) {
	subtotal := moneyOf("123.45")
	prev := DiscountAmount(subtotal, pct("-10"))

	for p := -10; p <= 120; p++ {
		cur := DiscountAmount(subtotal, decimal.NewFromInt(int64(p)))
		assert.GreaterOrEqual(t, cur.Cmp(prev), 0, "discount decreased at %d%%", p)
		prev = cur
	}
}

func TestTotal_FullDiscountIsExactlyZero(t *testing.T) {
	subtotal := moneyOf("99.99")
	discount := DiscountAmount(subtotal, pct("100"))

	total := Total(subtotal, discount, ZeroMoney())

	assert.True(t, total.IsZero())
	assert.False(t, total.IsNegative())
}

func TestTotal_FloorsAtZero(t *testing.T) {
	total := Total(moneyOf("10.00"), moneyOf("25.00"), ZeroMoney())

	assert.True(t, total.IsZero())
}

func TestTotal_AddsTax(t *testing.T) {
	total := Total(moneyOf("100.00"), moneyOf("10.00"), moneyOf("15.00"))

	assert.Equal(t, "105.00", total.String())
}

func TestZeroTax(t *testing.T) {
	assert.True(t, ZeroTax(moneyOf("500.00")).IsZero())
}

func TestFlatRateTax(t *testing.T) {
	tax := FlatRateTax(pct("0.15"))
	assert.Equal(t, "4.50", tax(moneyOf("30.00")).String())

	zero := FlatRateTax(decimal.Zero)
	assert.True(t, zero(moneyOf("30.00")).IsZero())
}

func TestComputeTotals_TenPercentScenario(t *testing.T) {
	cart := NewCart()
	p := testProduct("p1", "10.00")
	cart.AddItem(p, nil)
	cart.AddItem(p, nil)
	cart.AddItem(p, nil)

	totals := ComputeTotals(cart, pct("10"), ZeroTax)

	assert.Equal(t, "30.00", totals.Subtotal.String())
	assert.Equal(t, "3.00", totals.DiscountAmount.String())
	assert.Equal(t, "0.00", totals.Tax.String())
	assert.Equal(t, "27.00", totals.Total.String())
	assert.Equal(t, int64(3), totals.ItemCount)
	assert.True(t, totals.CanCheckout())
}

func TestComputeTotals_ClampsReportedPercentage(t *testing.T) {
	cart := NewCart()
	cart.AddItem(testProduct("p1", "10.00"), nil)

	totals := ComputeTotals(cart, pct("250"), nil)

	assert.True(t, totals.DiscountPercentage.Equal(pct("100")))
	assert.True(t, totals.Total.IsZero())
	assert.False(t, totals.CanCheckout(), "a zero total must block checkout")
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(NewCart(), decimal.Zero, ZeroTax)

	assert.True(t, totals.Total.IsZero())
	assert.False(t, totals.CanCheckout())
}
