// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Order groups the line items of one checkout under a shared order key (the
// payment-session id). Subtotal, DiscountTotal, TotalAmount and every item's
// charged price are stored in the base currency; ChargedAmount is the amount
// the buyer actually paid, converted to Currency. Invariant: the sum of item
// charged prices equals total_amount, and total_amount equals subtotal minus
// discount_total within rounding tolerance.
type Order struct {
	BaseModel
	OrderKey      string      `json:"order_key" gorm:"uniqueIndex;size:255;not null"`
	BuyerID       uuid.UUID   `json:"buyer_id" gorm:"type:uuid;not null;index"`
	Subtotal      float64     `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DiscountTotal float64     `json:"discount_total" gorm:"type:decimal(10,2);default:0"`
	TotalAmount   float64     `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ChargedAmount float64     `json:"charged_amount" gorm:"type:decimal(10,2);not null"`
	Currency      string      `json:"currency" gorm:"size:3;default:'MXN'"`
	CouponID      *uuid.UUID  `json:"coupon_id" gorm:"type:uuid"`
	CouponCode    string      `json:"coupon_code,omitempty" gorm:"size:50"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaidAt        *time.Time  `json:"paid_at"`

	// Relationships
	Buyer  User        `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Coupon *Coupon     `json:"coupon,omitempty" gorm:"foreignKey:CouponID"`
	Items  []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem records one cart line as charged. LineID keeps the cart-side
// identifier ("<beatID>-<licenseID>" for beat purchases) so a beat can appear
// under several licenses but never twice under the same one.
type OrderItem struct {
	BaseModel
	OrderID         uuid.UUID    `json:"order_id" gorm:"type:uuid;not null;index"`
	LineID          string       `json:"line_id" gorm:"size:100;not null"`
	ItemType        CartItemType `json:"item_type" gorm:"type:varchar(20);not null"`
	Title           string       `json:"title" gorm:"size:255;not null"`
	SellerID        uuid.UUID    `json:"seller_id" gorm:"type:uuid;index"`
	BeatID          *uuid.UUID   `json:"beat_id,omitempty" gorm:"type:uuid;index"`
	SoundKitID      *uuid.UUID   `json:"sound_kit_id,omitempty" gorm:"type:uuid"`
	ServiceID       *uuid.UUID   `json:"service_id,omitempty" gorm:"type:uuid"`
	LicenseType     string       `json:"license_type,omitempty" gorm:"size:20"`
	BasePrice       float64      `json:"base_price" gorm:"type:decimal(10,2);not null"`
	ChargedPrice    float64      `json:"charged_price" gorm:"type:decimal(10,2);not null"`
	DiscountApplied float64      `json:"discount_applied" gorm:"type:decimal(10,2);default:0"`
	ContractURL     string       `json:"contract_url,omitempty" gorm:"size:512"`
	Metadata        JSONB        `json:"metadata" gorm:"type:jsonb"`

	// Relationships
	Order  Order     `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Seller User      `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Beat   *Beat     `json:"beat,omitempty" gorm:"foreignKey:BeatID"`
	Kit    *SoundKit `json:"sound_kit,omitempty" gorm:"foreignKey:SoundKitID"`
}
