package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Resolver resolves a coupon code to an applicable rule and records
// redemptions. Implementations must return ErrInvalidCoupon for unknown
// codes rather than a nil rule.
type Resolver interface {
	Resolve(ctx context.Context, code string) (*Rule, error)
	// Redeem consumes one use of the coupon. Called once per placed order.
	Redeem(ctx context.Context, code string) error
}

// RepoResolver implements Resolver by looking up rules from a Repository and
// checking temporal validity and usage limits. It does not consume a use;
// the caller increments the counter once the coupon is actually redeemed.
type RepoResolver struct {
	repo Repository
	now  func() time.Time
}

// NewRepoResolver creates a RepoResolver backed by the given Repository.
func NewRepoResolver(repo Repository) *RepoResolver {
	return &RepoResolver{repo: repo, now: time.Now}
}

// Resolve looks up the rule for code and checks that it is currently valid.
func (r *RepoResolver) Resolve(ctx context.Context, code string) (*Rule, error) {
	rule, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	now := r.now()

	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrCouponExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrCouponExpired
	}

	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrCouponUsageLimitReached
	}

	return rule, nil
}

// Redeem increments the usage counter for code.
func (r *RepoResolver) Redeem(ctx context.Context, code string) error {
	return r.repo.IncrementUses(ctx, code)
}
