package domain

import "github.com/shopspring/decimal"

var (
	minPercentage = decimal.Zero
	maxPercentage = decimal.NewFromInt(100)
)

// ClampPercentage limits p to [0, 100]. Out-of-range values are clamped,
// not rejected.
func ClampPercentage(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(minPercentage) {
		return minPercentage
	}
	if p.GreaterThan(maxPercentage) {
		return maxPercentage
	}
	return p
}

func DiscountAmount(subtotal Money, percentage decimal.Decimal) Money {
	return subtotal.Percent(ClampPercentage(percentage))
}

// TaxFunc computes tax from a subtotal.
type TaxFunc func(subtotal Money) Money

func ZeroTax(Money) Money {
	return ZeroMoney()
}

// FlatRateTax charges rate (0.15 = 15%) on the subtotal, rounded to cents.
// A zero rate yields ZeroTax.
func FlatRateTax(rate decimal.Decimal) TaxFunc {
	if rate.IsZero() {
		return ZeroTax
	}
	pct := rate.Mul(hundred)
	return func(subtotal Money) Money {
		return subtotal.Percent(pct)
	}
}

// Total is subtotal - discount + tax, floored at zero.
func Total(subtotal, discount, tax Money) Money {
	return subtotal.Sub(discount).Add(tax).Max(ZeroMoney())
}

type Totals struct {
	Subtotal           Money           `json:"subtotal"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	DiscountAmount     Money           `json:"discountAmount"`
	Tax                Money           `json:"tax"`
	Total              Money           `json:"total"`
	ItemCount          int64           `json:"itemCount"`
}

func ComputeTotals(cart *Cart, percentage decimal.Decimal, tax TaxFunc) Totals {
	if tax == nil {
		tax = ZeroTax
	}
	subtotal := cart.Subtotal()
	clamped := ClampPercentage(percentage)
	discount := DiscountAmount(subtotal, clamped)
	taxAmount := tax(subtotal)
	return Totals{
		Subtotal:           subtotal,
		DiscountPercentage: clamped,
		DiscountAmount:     discount,
		Tax:                taxAmount,
		Total:              Total(subtotal, discount, taxAmount),
		ItemCount:          cart.ItemCount(),
	}
}

// CanCheckout reports whether a checkout may be submitted for these totals.
func (t Totals) CanCheckout() bool {
	return t.Total.IsPositive()
}
