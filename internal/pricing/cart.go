// internal/pricing/cart.go
package pricing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
)

// CartLine is one purchasable unit in a buyer's cart. Lines are single-unit;
// there is no quantity field. SellerID is populated once at line creation so
// eligibility checks never dig through metadata aliases.
type CartLine struct {
	ID               string                  `json:"id"`
	Type             models.CartItemType     `json:"type"`
	Title            string                  `json:"title"`
	Price            float64                 `json:"price"` // base currency (MXN)
	SellerID         uuid.UUID               `json:"seller_id"`
	LicenseID        string                  `json:"license_id,omitempty"`
	SubscriptionTier models.SubscriptionTier `json:"subscription_tier,omitempty"`
	Metadata         map[string]interface{}  `json:"metadata,omitempty"`
}

// BeatLineID builds the cart line id for a beat purchase. The same beat can
// sit in the cart under different licenses but never twice under the same one.
func BeatLineID(beatID uuid.UUID, licenseID string) string {
	return fmt.Sprintf("%s-%s", beatID, licenseID)
}

// DiscountContext is the resolved result of applying a coupon to a cart. It is
// an explicit value threaded through checkout calls, never ambient state, and
// it overlays the cart: stored line prices are never mutated.
type DiscountContext struct {
	CouponID    uuid.UUID `json:"coupon_id"`
	Code        string    `json:"code"`
	Percentage  float64   `json:"percentage"`
	EligibleIDs []string  `json:"eligible_ids"`
	Amount      float64   `json:"amount"` // total discount in base currency
}

// Covers reports whether the line id is discounted by this context.
func (d *DiscountContext) Covers(lineID string) bool {
	if d == nil {
		return false
	}
	for _, id := range d.EligibleIDs {
		if id == lineID {
			return true
		}
	}
	return false
}
