package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported coupon strategies.
type Kind string

const (
	// KindPercent takes a percentage off the cart subtotal.
	KindPercent Kind = "percent"
	// KindFlat takes a fixed amount off, capped at the subtotal.
	KindFlat Kind = "flat"
	// KindShipping waives the shipping fee; it carries no monetary discount.
	KindShipping Kind = "shipping"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is unknown or inactive.
	// An unknown code is always reported, never silently treated as zero
	// discount.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon is outside its valid window.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrCouponUsageLimitReached is returned when a coupon has exhausted its
	// allowed uses.
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
)

// Rule defines a coupon's discount behaviour and eligibility constraints.
// Value is a percentage for KindPercent, a monetary amount for KindFlat,
// and ignored for KindShipping.
type Rule struct {
	Code        string
	Kind        Kind
	Value       decimal.Decimal
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
}

// Discount is the result of applying a rule to a cart subtotal.
type Discount struct {
	// Amount is the monetary discount, never negative and never above the
	// subtotal it was computed from.
	Amount decimal.Decimal
	// FreeShipping reports that the shipping fee must be forced to zero.
	FreeShipping bool
	Description  string
}

// Repository provides lookup and mutation of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}
