// Package pricing derives checkout totals from resolved cart lines.
//
// All figures are computed server-side from authoritative product prices;
// client-supplied totals are never an input. Tax rate and shipping fee are
// single configured values referenced everywhere a total is produced.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Maharab2134/deshishop/internal/domain/coupon"
)

// Line is a cart line with its price already resolved from the catalog.
type Line struct {
	ProductID string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote breaks a cart total down into its components.
//
// Invariant: Total = Subtotal - Discount + Shipping + Tax, floored at zero.
type Quote struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculator computes quotes with a fixed tax rate and flat shipping fee.
type Calculator struct {
	// TaxRate is a fraction, e.g. 0.02 for 2%. Applied to (subtotal - discount).
	TaxRate decimal.Decimal
	// ShippingFee is the flat per-order fee, waived by shipping coupons.
	ShippingFee decimal.Decimal
}

// NewCalculator creates a Calculator with the given tax rate and shipping fee.
func NewCalculator(taxRate, shippingFee decimal.Decimal) Calculator {
	return Calculator{TaxRate: taxRate, ShippingFee: shippingFee}
}

// Quote computes the price breakdown for the given lines and optional coupon
// rule. A nil rule means no coupon. Lines with non-positive quantities must
// be rejected before reaching here; Quote itself is a pure function.
func (c Calculator) Quote(lines []Line, rule *coupon.Rule) (Quote, error) {
	subtotal := Subtotal(lines)

	var (
		discount     = decimal.Zero
		freeShipping bool
	)
	if rule != nil {
		d, err := coupon.Apply(rule, subtotal)
		if err != nil {
			return Quote{}, err
		}
		discount = d.Amount
		freeShipping = d.FreeShipping
	}

	shipping := c.ShippingFee
	if freeShipping {
		shipping = decimal.Zero
	}

	discounted := subtotal.Sub(discount)
	tax := c.TaxRate.Mul(discounted).Round(2)

	total := discounted.Add(shipping).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal.Round(2),
		Discount: discount.Round(2),
		Shipping: shipping.Round(2),
		Tax:      tax,
		Total:    total.Round(2),
	}, nil
}

// Subtotal returns the sum of unit price times quantity across all lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		sum = sum.Add(line.UnitPrice.Mul(qty))
	}
	return sum
}
