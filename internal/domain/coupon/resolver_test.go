package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	rule          *Rule
	err           error
	incrementErr  error
	incrementCode string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*Rule, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rule, nil
}

func (m *mockCouponRepo) IncrementUses(_ context.Context, code string) error {
	m.incrementCode = code
	return m.incrementErr
}

func newResolverAt(repo Repository, now time.Time) *RepoResolver {
	r := NewRepoResolver(repo)
	r.now = func() time.Time { return now }
	return r
}

func TestRepoResolver_Resolve(t *testing.T) {
	fixedNow := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := fixedNow.Add(-24 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name    string
		repo    *mockCouponRepo
		wantErr error
	}{
		{
			name: "valid rule resolves",
			repo: &mockCouponRepo{rule: &Rule{
				Code:  "EIDMUBARAK",
				Kind:  KindPercent,
				Value: decimal.NewFromInt(10),
			}},
		},
		{
			name:    "unknown code",
			repo:    &mockCouponRepo{err: ErrInvalidCoupon},
			wantErr: ErrInvalidCoupon,
		},
		{
			name: "not yet valid",
			repo: &mockCouponRepo{rule: &Rule{
				Code:      "SOON",
				Kind:      KindFlat,
				ValidFrom: &future,
			}},
			wantErr: ErrCouponExpired,
		},
		{
			name: "expired",
			repo: &mockCouponRepo{rule: &Rule{
				Code:       "OLD",
				Kind:       KindFlat,
				ValidUntil: &past,
			}},
			wantErr: ErrCouponExpired,
		},
		{
			name: "inside valid window",
			repo: &mockCouponRepo{rule: &Rule{
				Code:       "NOW",
				Kind:       KindFlat,
				Value:      decimal.NewFromInt(50),
				ValidFrom:  &past,
				ValidUntil: &future,
			}},
		},
		{
			name: "usage limit reached",
			repo: &mockCouponRepo{rule: &Rule{
				Code:    "LIMITED",
				Kind:    KindFlat,
				MaxUses: 5,
				Uses:    5,
			}},
			wantErr: ErrCouponUsageLimitReached,
		},
		{
			name: "zero max uses means unlimited",
			repo: &mockCouponRepo{rule: &Rule{
				Code: "FOREVER",
				Kind: KindShipping,
				Uses: 100000,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolverAt(tt.repo, fixedNow)

			rule, err := r.Resolve(context.Background(), "CODE")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.repo.rule.Code, rule.Code)
		})
	}
}

func TestRepoResolver_ResolveRepoError(t *testing.T) {
	repo := &mockCouponRepo{err: errors.New("connection refused")}
	r := newResolverAt(repo, time.Now())

	_, err := r.Resolve(context.Background(), "ANY")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCoupon)
}

func TestRepoResolver_Redeem(t *testing.T) {
	repo := &mockCouponRepo{}
	r := newResolverAt(repo, time.Now())

	require.NoError(t, r.Redeem(context.Background(), "EIDMUBARAK"))
	assert.Equal(t, "EIDMUBARAK", repo.incrementCode)
}
