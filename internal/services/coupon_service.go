// internal/services/coupon_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tianguisbeats/tianguis-backend/internal/models"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

type CouponService struct {
	db *gorm.DB
}

type CreateCouponRequest struct {
	Code       string              `json:"code" validate:"required,coupon_code"`
	Percentage float64             `json:"percentage" validate:"required,gt=0,lte=100"`
	AplicaA    models.CouponScope  `json:"aplica_a"`
	TargetPlan models.CouponTarget `json:"target_plan,omitempty"`
	ExpiresAt  *time.Time          `json:"expires_at,omitempty"`
	MaxUses    *int                `json:"max_uses,omitempty"`
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// GetByCode looks a coupon up case-insensitively. Codes are stored as entered
// but matched lowercased, backed by the unique LOWER(code) index.
func (s *CouponService) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &coupon, nil
}

// Resolve fetches the coupon and evaluates it against the cart. A *pricing.CouponError
// carries the buyer-facing rejection reason; any other error is infrastructure.
func (s *CouponService) Resolve(code string, lines []pricing.CartLine) (*pricing.DiscountContext, *pricing.CouponError, error) {
	coupon, err := s.GetByCode(code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, &pricing.CouponError{
				Reason:  pricing.ReasonNotFound,
				Message: "Este cupón no existe",
			}, nil
		}
		return nil, nil, err
	}

	ctx, rejection := pricing.ResolveCoupon(coupon, lines, time.Now())
	if rejection != nil {
		return nil, rejection, nil
	}
	return ctx, nil, nil
}

// Redeem increments the coupon's usage counter once, guarded against the
// usage cap at the database so concurrent checkouts cannot overshoot it. It
// must only be called after payment is confirmed.
func (s *CouponService) Redeem(tx *gorm.DB, couponID uuid.UUID) error {
	result := tx.Model(&models.Coupon{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", couponID).
		Update("current_uses", gorm.Expr("current_uses + 1"))

	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponExhausted
	}
	return nil
}

// CreateSellerCoupon registers a coupon owned by a producer. Seller coupons
// only ever discount that seller's own catalog, never subscription plans.
func (s *CouponService) CreateSellerCoupon(sellerID uuid.UUID, req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	scope := req.AplicaA
	if scope == "" {
		scope = models.CouponScopeAll
	}
	if scope == models.CouponScopeSubscriptions {
		return nil, errors.New("seller coupons cannot target subscription plans")
	}

	coupon := &models.Coupon{
		Code:       strings.TrimSpace(req.Code),
		Active:     true,
		Percentage: req.Percentage,
		AplicaA:    scope,
		SellerID:   &sellerID,
		ExpiresAt:  req.ExpiresAt,
		MaxUses:    req.MaxUses,
	}

	if err := s.db.Create(coupon).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.New("a coupon with this code already exists")
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

// CreateAdminCoupon registers a platform coupon. Admin coupons only ever
// discount subscription plans, optionally narrowed to a tier.
func (s *CouponService) CreateAdminCoupon(req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	target := req.TargetPlan
	if target == "" {
		target = models.CouponTargetAll
	}

	coupon := &models.Coupon{
		Code:       strings.TrimSpace(req.Code),
		Active:     true,
		Percentage: req.Percentage,
		AplicaA:    models.CouponScopeSubscriptions,
		TargetPlan: target,
		ExpiresAt:  req.ExpiresAt,
		MaxUses:    req.MaxUses,
	}

	if err := s.db.Create(coupon).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, errors.New("a coupon with this code already exists")
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

// Deactivate turns a coupon off without deleting its redemption history. A
// seller can only deactivate their own coupons; admins pass a nil ownerID.
func (s *CouponService) Deactivate(couponID uuid.UUID, ownerID *uuid.UUID) error {
	query := s.db.Model(&models.Coupon{}).Where("id = ?", couponID)
	if ownerID != nil {
		query = query.Where("seller_id = ?", *ownerID)
	}

	result := query.Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// ListSellerCoupons returns every coupon a producer has issued, newest first.
func (s *CouponService) ListSellerCoupons(sellerID uuid.UUID) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := s.db.Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}
