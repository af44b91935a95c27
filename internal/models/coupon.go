// internal/models/coupon.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a percentage discount code. A coupon owned by a seller only ever
// discounts that seller's beats, sound kits or services; a coupon with no
// seller is administrator-issued and only ever discounts subscription plans.
type Coupon struct {
	BaseModel
	Code        string       `json:"code" gorm:"uniqueIndex;size:50;not null"`
	Active      bool         `json:"active" gorm:"default:true"`
	Percentage  float64      `json:"percentage" gorm:"type:decimal(5,2);not null"`
	AplicaA     CouponScope  `json:"aplica_a" gorm:"column:aplica_a;type:varchar(20);default:'all'"`
	SellerID    *uuid.UUID   `json:"seller_id" gorm:"type:uuid;index"`
	TargetPlan  CouponTarget `json:"target_plan,omitempty" gorm:"type:varchar(20)"`
	ExpiresAt   *time.Time   `json:"expires_at"`
	MaxUses     *int         `json:"max_uses"`
	CurrentUses int          `json:"current_uses" gorm:"default:0"`

	// Relationships
	Seller *User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

func (c *Coupon) IsExhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}

// IsAdminCoupon reports whether the coupon was issued by the platform rather
// than a seller.
func (c *Coupon) IsAdminCoupon() bool {
	return c.SellerID == nil
}
