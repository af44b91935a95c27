// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeProducer UserType = "producer"
	UserTypeBuyer    UserType = "buyer"
	UserTypeAdmin    UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

// CartItemType tags every purchasable unit in a cart.
type CartItemType string

const (
	CartItemBeat     CartItemType = "beat"
	CartItemSoundKit CartItemType = "sound_kit"
	CartItemService  CartItemType = "service"
	CartItemPlan     CartItemType = "plan"
)

// CouponScope mirrors the aplica_a column: the product category a coupon is
// restricted to.
type CouponScope string

const (
	CouponScopeAll           CouponScope = "all"
	CouponScopeBeats         CouponScope = "beats"
	CouponScopeSoundKits     CouponScope = "sound_kits"
	CouponScopeServices      CouponScope = "services"
	CouponScopeSubscriptions CouponScope = "subscriptions"
)

type SubscriptionTier string

const (
	SubscriptionTierFree    SubscriptionTier = "free"
	SubscriptionTierPro     SubscriptionTier = "pro"
	SubscriptionTierPremium SubscriptionTier = "premium"
)

// CouponTarget narrows an admin coupon to specific subscription tiers.
type CouponTarget string

const (
	CouponTargetAll        CouponTarget = "all"
	CouponTargetPro        CouponTarget = "pro"
	CouponTargetPremium    CouponTarget = "premium"
	CouponTargetProPremium CouponTarget = "pro_premium"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
)
