// internal/handlers/subscription.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tianguisbeats/tianguis-backend/internal/services"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Plans lists the available subscription plans. Purchasing one goes through
// the regular checkout with a plan cart line.
func (h *SubscriptionHandler) Plans(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{"plans": services.Plans()})
}

// Mine returns the tier the caller's subscription currently grants.
func (h *SubscriptionHandler) Mine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tier, err := h.subscriptionService.CurrentTier(userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve subscription tier")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"tier": tier})
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.subscriptionService.Cancel(userID); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"canceled": true})
}
