// internal/models/subscription.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	BaseModel
	UserID               uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	Tier                 SubscriptionTier   `json:"tier" gorm:"type:varchar(20);not null;default:'free'"`
	Status               SubscriptionStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	PaymentReference     string             `json:"payment_reference,omitempty" gorm:"size:255"`
	CurrentPeriodEndsAt  *time.Time         `json:"current_period_ends_at"`
	CanceledAt           *time.Time         `json:"canceled_at"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// IsCurrent reports whether the subscription still grants its tier.
func (s *Subscription) IsCurrent(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	return s.CurrentPeriodEndsAt == nil || s.CurrentPeriodEndsAt.After(now)
}
