package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Apply computes the discount a rule yields for the given cart subtotal.
// The monetary amount is clamped to [0, subtotal] so a discount can never
// push a total negative.
func Apply(rule *Rule, subtotal decimal.Decimal) (Discount, error) {
	switch rule.Kind {
	case KindPercent:
		amount := subtotal.Mul(rule.Value).Div(hundred)
		return Discount{
			Amount:      clamp(amount, subtotal),
			Description: rule.Description,
		}, nil
	case KindFlat:
		return Discount{
			Amount:      clamp(rule.Value, subtotal),
			Description: rule.Description,
		}, nil
	case KindShipping:
		return Discount{
			Amount:       decimal.Zero,
			FreeShipping: true,
			Description:  rule.Description,
		}, nil
	default:
		return Discount{}, errors.Errorf("unsupported coupon kind: %q", rule.Kind)
	}
}

// clamp bounds amount to [0, max] and rounds to 2 decimal places.
func clamp(amount, max decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(amount, max).Round(2)
}
