// internal/pricing/coupon_test.go
package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func sellerCoupon(sellerID uuid.UUID, pct float64, scope models.CouponScope) *models.Coupon {
	return &models.Coupon{
		BaseModel:  models.BaseModel{ID: uuid.New()},
		Code:       "PROMO",
		Active:     true,
		Percentage: pct,
		AplicaA:    scope,
		SellerID:   &sellerID,
	}
}

func adminCoupon(pct float64, target models.CouponTarget) *models.Coupon {
	return &models.Coupon{
		BaseModel:  models.BaseModel{ID: uuid.New()},
		Code:       "PLATAFORMA",
		Active:     true,
		Percentage: pct,
		AplicaA:    models.CouponScopeSubscriptions,
		TargetPlan: target,
	}
}

func beatLine(sellerID uuid.UUID, price float64) CartLine {
	beatID := uuid.New()
	return CartLine{
		ID:        BeatLineID(beatID, "mp3"),
		Type:      models.CartItemBeat,
		Title:     "Beat de prueba",
		Price:     price,
		SellerID:  sellerID,
		LicenseID: "mp3",
	}
}

func planLine(tier models.SubscriptionTier, price float64) CartLine {
	return CartLine{
		ID:               "plan-" + string(tier),
		Type:             models.CartItemPlan,
		Title:            "Plan " + string(tier),
		Price:            price,
		SubscriptionTier: tier,
	}
}

func TestSellerCouponDiscountsOwnBeats(t *testing.T) {
	seller := uuid.New()
	lines := []CartLine{
		beatLine(seller, 500),
		beatLine(uuid.New(), 300), // someone else's beat
	}

	ctx, rejection := ResolveCoupon(sellerCoupon(seller, 20, models.CouponScopeAll), lines, now)
	require.Nil(t, rejection)
	require.NotNil(t, ctx)

	assert.Equal(t, []string{lines[0].ID}, ctx.EligibleIDs)
	assert.InDelta(t, 100.0, ctx.Amount, Epsilon)
	assert.True(t, ctx.Covers(lines[0].ID))
	assert.False(t, ctx.Covers(lines[1].ID))
}

func TestResolveCouponIsIdempotent(t *testing.T) {
	seller := uuid.New()
	coupon := sellerCoupon(seller, 15, models.CouponScopeBeats)
	lines := []CartLine{beatLine(seller, 400)}

	first, rej1 := ResolveCoupon(coupon, lines, now)
	second, rej2 := ResolveCoupon(coupon, lines, now)
	require.Nil(t, rej1)
	require.Nil(t, rej2)
	assert.Equal(t, first, second)
	assert.False(t, coupon.IsExhausted(), "resolution must not consume uses")
}

func TestInactiveExpiredExhausted(t *testing.T) {
	seller := uuid.New()
	lines := []CartLine{beatLine(seller, 400)}

	inactive := sellerCoupon(seller, 10, models.CouponScopeAll)
	inactive.Active = false
	_, rejection := ResolveCoupon(inactive, lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonInactive, rejection.Reason)
	assert.Equal(t, "Este cupón ya no está activo", rejection.Message)

	expired := sellerCoupon(seller, 10, models.CouponScopeAll)
	past := now.Add(-time.Hour)
	expired.ExpiresAt = &past
	_, rejection = ResolveCoupon(expired, lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonExpired, rejection.Reason)

	exhausted := sellerCoupon(seller, 10, models.CouponScopeAll)
	max := 5
	exhausted.MaxUses = &max
	exhausted.CurrentUses = 5
	_, rejection = ResolveCoupon(exhausted, lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonExhausted, rejection.Reason)
}

func TestSellerCouponNeverMatchesPlans(t *testing.T) {
	seller := uuid.New()
	lines := []CartLine{planLine(models.SubscriptionTierPro, 99)}

	_, rejection := ResolveCoupon(sellerCoupon(seller, 50, models.CouponScopeAll), lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonWrongSeller, rejection.Reason)
}

func TestSellerCouponWrongSellerMessage(t *testing.T) {
	lines := []CartLine{beatLine(uuid.New(), 500)}

	_, rejection := ResolveCoupon(sellerCoupon(uuid.New(), 10, models.CouponScopeAll), lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonWrongSeller, rejection.Reason)
	assert.Equal(t, "Este cupón solo es válido para productos del vendedor que lo emitió", rejection.Message)
}

func TestSellerCouponWrongCategoryMessage(t *testing.T) {
	seller := uuid.New()
	kitID := uuid.New()
	lines := []CartLine{{
		ID:       kitID.String(),
		Type:     models.CartItemSoundKit,
		Title:    "Kit de percusiones",
		Price:    499,
		SellerID: seller,
	}}

	// The seller owns the kit, but the coupon only covers beats.
	_, rejection := ResolveCoupon(sellerCoupon(seller, 10, models.CouponScopeBeats), lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonWrongType, rejection.Reason)
	assert.Equal(t, "Este cupón solo aplica a beats", rejection.Message)
}

func TestScopeSingularSpellings(t *testing.T) {
	seller := uuid.New()

	cases := []struct {
		scope models.CouponScope
		line  CartLine
	}{
		{models.CouponScope("beat"), beatLine(seller, 200)},
		{models.CouponScope("sound_kit"), CartLine{
			ID: uuid.New().String(), Type: models.CartItemSoundKit, Price: 499, SellerID: seller,
		}},
		{models.CouponScope("service"), CartLine{
			ID: uuid.New().String(), Type: models.CartItemService, Price: 800, SellerID: seller,
		}},
	}

	for _, tc := range cases {
		ctx, rejection := ResolveCoupon(sellerCoupon(seller, 10, tc.scope), []CartLine{tc.line}, now)
		require.Nil(t, rejection, "scope %q should accept its singular spelling", tc.scope)
		assert.Len(t, ctx.EligibleIDs, 1)
	}
}

func TestAdminCouponOnlyMatchesPlans(t *testing.T) {
	seller := uuid.New()
	lines := []CartLine{
		beatLine(seller, 500),
		planLine(models.SubscriptionTierPro, 99),
	}

	ctx, rejection := ResolveCoupon(adminCoupon(25, models.CouponTargetAll), lines, now)
	require.Nil(t, rejection)
	assert.Equal(t, []string{"plan-pro"}, ctx.EligibleIDs)
	assert.InDelta(t, 24.75, ctx.Amount, Epsilon)
}

func TestAdminCouponBeatsOnlyCartRejected(t *testing.T) {
	lines := []CartLine{beatLine(uuid.New(), 500)}

	_, rejection := ResolveCoupon(adminCoupon(25, models.CouponTargetAll), lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonSubsOnly, rejection.Reason)
	assert.Equal(t, "Este cupón solo es válido para planes de suscripción", rejection.Message)
}

func TestAdminCouponTierTargeting(t *testing.T) {
	pro := planLine(models.SubscriptionTierPro, 99)
	premium := planLine(models.SubscriptionTierPremium, 199)
	free := planLine(models.SubscriptionTierFree, 0)

	cases := []struct {
		name     string
		target   models.CouponTarget
		lines    []CartLine
		eligible []string
	}{
		{"all excludes free", models.CouponTargetAll, []CartLine{pro, premium, free}, []string{"plan-pro", "plan-premium"}},
		{"pro only", models.CouponTargetPro, []CartLine{pro, premium}, []string{"plan-pro"}},
		{"premium only", models.CouponTargetPremium, []CartLine{pro, premium}, []string{"plan-premium"}},
		{"pro_premium", models.CouponTargetProPremium, []CartLine{pro, premium, free}, []string{"plan-pro", "plan-premium"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, rejection := ResolveCoupon(adminCoupon(10, tc.target), tc.lines, now)
			require.Nil(t, rejection)
			assert.Equal(t, tc.eligible, ctx.EligibleIDs)
		})
	}
}

func TestAdminCouponFreePlanOnlyRejected(t *testing.T) {
	lines := []CartLine{planLine(models.SubscriptionTierFree, 0)}

	_, rejection := ResolveCoupon(adminCoupon(10, models.CouponTargetAll), lines, now)
	require.NotNil(t, rejection)
	assert.Equal(t, ReasonSubsOnly, rejection.Reason)
}
