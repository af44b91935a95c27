// internal/handlers/order.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tianguisbeats/tianguis-backend/internal/i18n"
	"github.com/tianguisbeats/tianguis-backend/internal/services"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

type OrderHandler struct {
	checkoutService *services.CheckoutService
	contractService *services.ContractService
}

func NewOrderHandler(checkoutService *services.CheckoutService, contractService *services.ContractService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		contractService: contractService,
	}
}

// List returns the authenticated buyer's purchase history.
func (h *OrderHandler) List(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orders, err := h.checkoutService.GetOrders(buyerID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list orders")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order ID", nil)
		return
	}

	order, err := h.checkoutService.GetOrder(buyerID, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "order")
			return
		}
		logrus.WithError(err).Error("Failed to get order")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, order)
}

// ContractDownload hands out a short-lived link to an item's license contract.
func (h *OrderHandler) ContractDownload(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	url, err := h.contractService.ContractDownloadURL(buyerID, itemID)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "order")
		case errors.Is(err, services.ErrContractNotReady):
			utils.ErrorResponse(c, 409, "CONTRACT_NOT_READY", i18n.T(lang, i18n.KeyContractNotReady), nil)
		default:
			logrus.WithError(err).Error("Failed to resolve contract download")
			utils.InternalErrorResponse(c, "")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{"download_url": url})
}
