// internal/handlers/coupon.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tianguisbeats/tianguis-backend/internal/services"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

type CouponHandler struct {
	couponService   *services.CouponService
	checkoutService *services.CheckoutService
}

func NewCouponHandler(couponService *services.CouponService, checkoutService *services.CheckoutService) *CouponHandler {
	return &CouponHandler{
		couponService:   couponService,
		checkoutService: checkoutService,
	}
}

// Validate evaluates a coupon against the caller's cart and previews the
// discounted totals. Rejections come back as 422 with a machine-readable
// reason; the cart is never modified either way.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}
	if req.CouponCode == "" {
		utils.BadRequestResponse(c, "coupon_code is required", nil)
		return
	}

	totals, discount, rejection, err := h.checkoutService.Quote(&req)
	if err != nil {
		if errors.Is(err, services.ErrBeatNotFound) || errors.Is(err, services.ErrBeatSold) ||
			errors.Is(err, services.ErrLicenseNotForSale) || errors.Is(err, services.ErrEmptyCart) {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
		logrus.WithError(err).Error("Failed to quote cart")
		utils.InternalErrorResponse(c, "")
		return
	}
	if rejection != nil {
		utils.CouponRejectedResponse(c, rejection.Reason, rejection.Message)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"discount": discount,
		"totals":   totals,
	})
}

// Create registers a coupon for the authenticated producer's own catalog.
func (h *CouponHandler) Create(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	coupon, err := h.couponService.CreateSellerCoupon(sellerID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, coupon)
}

// CreateAdmin registers a platform coupon for subscription plans.
func (h *CouponHandler) CreateAdmin(c *gin.Context) {
	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	coupon, err := h.couponService.CreateAdminCoupon(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, coupon)
}

// ListMine returns the authenticated producer's coupons.
func (h *CouponHandler) ListMine(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	coupons, err := h.couponService.ListSellerCoupons(sellerID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list coupons")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"coupons": coupons})
}

// Deactivate turns one of the caller's coupons off. Admins can deactivate any
// coupon.
func (h *CouponHandler) Deactivate(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid coupon ID", nil)
		return
	}

	var ownerID *uuid.UUID
	if userType, _ := utils.GetUserTypeFromContext(c); userType != "admin" {
		sellerID, ok := currentUserID(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			return
		}
		ownerID = &sellerID
	}

	if err := h.couponService.Deactivate(couponID, ownerID); err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.NotFoundResponse(c, "coupon")
			return
		}
		logrus.WithError(err).Error("Failed to deactivate coupon")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"deactivated": true})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
