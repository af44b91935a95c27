// internal/handlers/checkout.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tianguisbeats/tianguis-backend/internal/i18n"
	"github.com/tianguisbeats/tianguis-backend/internal/pricing"
	"github.com/tianguisbeats/tianguis-backend/internal/services"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Create re-prices the cart server-side, opens a payment session and returns
// the redirect URL. Every rejection leaves the cart untouched.
func (h *CheckoutHandler) Create(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	response, rejection, err := h.checkoutService.CreateCheckout(buyerID, &req)
	if err != nil {
		h.respondCheckoutError(c, err)
		return
	}
	if rejection != nil {
		utils.CouponRejectedResponse(c, rejection.Reason, rejection.Message)
		return
	}

	utils.CreatedResponse(c, response)
}

// Confirm finalizes an order after the buyer returns from the payment page.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderKey := c.Param("orderKey")
	if orderKey == "" {
		utils.BadRequestResponse(c, "order key is required", nil)
		return
	}

	order, err := h.checkoutService.ConfirmCheckout(buyerID, orderKey)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "order")
		case errors.Is(err, services.ErrPaymentIncomplete):
			utils.ErrorResponse(c, 402, "PAYMENT_INCOMPLETE", i18n.T(lang, i18n.KeyCheckoutPaymentFailed), nil)
		default:
			logrus.WithError(err).WithField("order_key", orderKey).Error("Failed to confirm checkout")
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.SuccessResponse(c, order)
}

func (h *CheckoutHandler) respondCheckoutError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	switch {
	case errors.Is(err, pricing.ErrTotalMismatch):
		utils.ErrorResponse(c, 409, "TOTAL_MISMATCH", i18n.T(lang, i18n.KeyCheckoutTotalMismatch), nil)
	case errors.Is(err, services.ErrBeatSold):
		utils.ErrorResponse(c, 409, "BEAT_SOLD", i18n.T(lang, i18n.KeyBeatSoldOut), nil)
	case errors.Is(err, services.ErrBeatNotFound):
		utils.NotFoundResponse(c, "beat")
	case errors.Is(err, services.ErrLicenseNotForSale),
		errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		logrus.WithError(err).Error("Failed to create checkout")
		utils.InternalErrorResponse(c, "")
	}
}
