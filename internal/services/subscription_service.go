// internal/services/subscription_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
)

// Monthly plan prices in MXN. Plans are platform-priced, not per-seller, so
// plan cart lines carry a nil seller.
var planPrices = map[models.SubscriptionTier]float64{
	models.SubscriptionTierFree:    0,
	models.SubscriptionTierPro:     99,
	models.SubscriptionTierPremium: 199,
}

var planNames = map[models.SubscriptionTier]string{
	models.SubscriptionTierFree:    "Plan Free",
	models.SubscriptionTierPro:     "Plan Pro",
	models.SubscriptionTierPremium: "Plan Premium",
}

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// PlanInfo is the public description of a subscription plan.
type PlanInfo struct {
	Tier         models.SubscriptionTier `json:"tier"`
	Name         string                  `json:"name"`
	MonthlyPrice float64                 `json:"monthly_price"` // MXN
}

// Plans lists every subscription plan in ascending price order.
func Plans() []PlanInfo {
	return []PlanInfo{
		{Tier: models.SubscriptionTierFree, Name: planNames[models.SubscriptionTierFree], MonthlyPrice: planPrices[models.SubscriptionTierFree]},
		{Tier: models.SubscriptionTierPro, Name: planNames[models.SubscriptionTierPro], MonthlyPrice: planPrices[models.SubscriptionTierPro]},
		{Tier: models.SubscriptionTierPremium, Name: planNames[models.SubscriptionTierPremium], MonthlyPrice: planPrices[models.SubscriptionTierPremium]},
	}
}

// PlanPrice returns the monthly price of a tier, or an error for unknown tiers.
func PlanPrice(tier models.SubscriptionTier) (float64, error) {
	price, ok := planPrices[tier]
	if !ok {
		return 0, fmt.Errorf("unknown subscription tier %q", tier)
	}
	return price, nil
}

// PlanLine builds the cart line for a plan purchase. Plan lines are the only
// lines an administrator coupon can discount.
func PlanLine(tier models.SubscriptionTier) (pricing.CartLine, error) {
	price, err := PlanPrice(tier)
	if err != nil {
		return pricing.CartLine{}, err
	}
	if tier == models.SubscriptionTierFree {
		return pricing.CartLine{}, errors.New("the free plan cannot be purchased")
	}

	return pricing.CartLine{
		ID:               "plan-" + string(tier),
		Type:             models.CartItemPlan,
		Title:            planNames[tier],
		Price:            price,
		SubscriptionTier: tier,
	}, nil
}

// CurrentTier resolves the tier a user's active subscription grants right now.
// Users with no current subscription are on the free tier.
func (s *SubscriptionService) CurrentTier(userID uuid.UUID) (models.SubscriptionTier, error) {
	var sub models.Subscription
	err := s.db.Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SubscriptionTierFree, nil
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	if !sub.IsCurrent(time.Now()) {
		return models.SubscriptionTierFree, nil
	}
	return sub.Tier, nil
}

// Activate grants a paid tier for one billing period, replacing any previous
// active subscription. Called from checkout confirmation inside its
// transaction so a failed payment never changes the tier.
func (s *SubscriptionService) Activate(tx *gorm.DB, userID uuid.UUID, tier models.SubscriptionTier, paymentRef string) error {
	if _, ok := planPrices[tier]; !ok {
		return fmt.Errorf("unknown subscription tier %q", tier)
	}

	now := time.Now()
	if err := tx.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": now,
		}).Error; err != nil {
		return fmt.Errorf("failed to supersede previous subscription: %w", err)
	}

	periodEnd := now.AddDate(0, 1, 0)
	sub := &models.Subscription{
		UserID:              userID,
		Tier:                tier,
		Status:              models.SubscriptionStatusActive,
		PaymentReference:    paymentRef,
		CurrentPeriodEndsAt: &periodEnd,
	}
	if err := tx.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	return nil
}

// Cancel downgrades a user to free at the end of the current period.
func (s *SubscriptionService) Cancel(userID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":      models.SubscriptionStatusCanceled,
			"canceled_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("no active subscription to cancel")
	}
	return nil
}
