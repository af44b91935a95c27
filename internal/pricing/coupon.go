// internal/pricing/coupon.go
package pricing

import (
	"time"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
)

// Machine-readable reasons for a coupon rejection. Handlers use these to pick
// the HTTP status and to distinguish "your coupon is invalid" from
// infrastructure failures.
const (
	ReasonNotFound        = "coupon_not_found"
	ReasonInactive        = "coupon_inactive"
	ReasonExpired         = "coupon_expired"
	ReasonExhausted       = "coupon_exhausted"
	ReasonWrongSeller     = "coupon_wrong_seller"
	ReasonWrongType       = "coupon_wrong_product_type"
	ReasonSubsOnly        = "coupon_subscriptions_only"
	ReasonNothingEligible = "coupon_no_eligible_items"
)

// CouponError is a recoverable validation failure with a user-facing message.
// It never corrupts cart state; the cart is left exactly as it was.
type CouponError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (e *CouponError) Error() string {
	return e.Message
}

// ResolveCoupon decides, per cart line, whether the coupon discounts it, and
// computes the aggregate discount. It is pure: it never mutates the coupon or
// the lines, and resolving the same coupon against the same cart twice yields
// the same context. The discount is applied as an overlay at checkout-total
// time, not by rewriting stored prices.
func ResolveCoupon(coupon *models.Coupon, lines []CartLine, now time.Time) (*DiscountContext, *CouponError) {
	if !coupon.Active {
		return nil, &CouponError{ReasonInactive, "Este cupón ya no está activo"}
	}
	if coupon.IsExpired(now) {
		return nil, &CouponError{ReasonExpired, "Este cupón ha expirado"}
	}
	if coupon.IsExhausted() {
		return nil, &CouponError{ReasonExhausted, "Este cupón ha alcanzado su límite de usos"}
	}

	ctx := &DiscountContext{
		CouponID:    coupon.ID,
		Code:        coupon.Code,
		Percentage:  coupon.Percentage,
		EligibleIDs: []string{},
	}

	for _, line := range lines {
		if lineEligible(coupon, line) {
			ctx.EligibleIDs = append(ctx.EligibleIDs, line.ID)
			ctx.Amount += line.Price * (coupon.Percentage / 100)
		}
	}

	if len(ctx.EligibleIDs) == 0 {
		return nil, noEligibleError(coupon, lines)
	}
	return ctx, nil
}

func lineEligible(coupon *models.Coupon, line CartLine) bool {
	if coupon.IsAdminCoupon() {
		// Administrator coupons are valid only against subscription plans.
		return line.Type == models.CartItemPlan &&
			coupon.AplicaA == models.CouponScopeSubscriptions &&
			planTierMatches(coupon.TargetPlan, line.SubscriptionTier)
	}

	// Seller coupons never touch subscription lines, only that seller's goods.
	if line.Type == models.CartItemPlan {
		return false
	}
	if line.SellerID != *coupon.SellerID {
		return false
	}
	return scopeMatches(coupon.AplicaA, line.Type)
}

// scopeMatches accepts both the singular and plural spellings the stored
// coupons carry for aplica_a.
func scopeMatches(scope models.CouponScope, t models.CartItemType) bool {
	switch scope {
	case models.CouponScopeAll:
		return t == models.CartItemBeat || t == models.CartItemSoundKit || t == models.CartItemService
	case models.CouponScopeBeats, models.CouponScope("beat"):
		return t == models.CartItemBeat
	case models.CouponScopeSoundKits, models.CouponScope("sound_kit"):
		return t == models.CartItemSoundKit
	case models.CouponScopeServices, models.CouponScope("service"):
		return t == models.CartItemService
	}
	return false
}

// planTierMatches implements admin-coupon tier targeting: "all" covers every
// paid tier, never the free one.
func planTierMatches(target models.CouponTarget, tier models.SubscriptionTier) bool {
	switch target {
	case models.CouponTargetAll, models.CouponTarget(""):
		return tier != models.SubscriptionTierFree && tier != ""
	case models.CouponTargetPro:
		return tier == models.SubscriptionTierPro
	case models.CouponTargetPremium:
		return tier == models.SubscriptionTierPremium
	case models.CouponTargetProPremium:
		return tier == models.SubscriptionTierPro || tier == models.SubscriptionTierPremium
	}
	return false
}

// noEligibleError picks the most specific user-facing reason. For a seller
// coupon the scope decides the message: a cart with none of the seller's
// goods fails as "wrong seller", a cart with the seller's goods of the wrong
// category fails with the category the coupon actually covers.
func noEligibleError(coupon *models.Coupon, lines []CartLine) *CouponError {
	if coupon.IsAdminCoupon() {
		return &CouponError{ReasonSubsOnly, "Este cupón solo es válido para planes de suscripción"}
	}

	sellerHasLines := false
	for _, line := range lines {
		if line.Type != models.CartItemPlan && line.SellerID == *coupon.SellerID {
			sellerHasLines = true
			break
		}
	}
	if !sellerHasLines {
		return &CouponError{ReasonWrongSeller, "Este cupón solo es válido para productos del vendedor que lo emitió"}
	}

	switch coupon.AplicaA {
	case models.CouponScopeBeats, models.CouponScope("beat"):
		return &CouponError{ReasonWrongType, "Este cupón solo aplica a beats"}
	case models.CouponScopeSoundKits, models.CouponScope("sound_kit"):
		return &CouponError{ReasonWrongType, "Este cupón solo aplica a sound kits"}
	case models.CouponScopeServices, models.CouponScope("service"):
		return &CouponError{ReasonWrongType, "Este cupón solo aplica a servicios"}
	}
	return &CouponError{ReasonNothingEligible, "El cupón no aplica a ningún artículo de tu carrito"}
}
