// internal/handlers/beat.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tianguisbeats/tianguis-backend/internal/licensing"
	"github.com/tianguisbeats/tianguis-backend/internal/services"
	"github.com/tianguisbeats/tianguis-backend/internal/utils"
)

type BeatHandler struct {
	beatService *services.BeatService
}

func NewBeatHandler(beatService *services.BeatService) *BeatHandler {
	return &BeatHandler{beatService: beatService}
}

// List serves the public catalog. Sold beats never appear here.
func (h *BeatHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.beatService.List(params, false)
	if err != nil {
		logrus.WithError(err).Error("Failed to list beats")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, result)
}

func (h *BeatHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid beat ID", nil)
		return
	}

	beat, err := h.beatService.GetByID(id)
	if err != nil {
		if errors.Is(err, services.ErrBeatNotFound) {
			utils.NotFoundResponse(c, "beat")
			return
		}
		logrus.WithError(err).Error("Failed to get beat")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, services.BeatWithLicenses{
		Beat:     *beat,
		Licenses: licensing.PurchasableLicenses(beat),
	})
}

// Licenses returns the purchasable license set of one beat. A sold beat
// responds with an empty list, not an error; the storefront renders it as
// "no longer available".
func (h *BeatHandler) Licenses(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid beat ID", nil)
		return
	}

	licenses, err := h.beatService.Licenses(id)
	if err != nil {
		if errors.Is(err, services.ErrBeatNotFound) {
			utils.NotFoundResponse(c, "beat")
			return
		}
		logrus.WithError(err).Error("Failed to get beat licenses")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"licenses": licenses})
}

// Play records a playback. Counting failures never break playback.
func (h *BeatHandler) Play(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid beat ID", nil)
		return
	}

	if err := h.beatService.RecordPlay(id); err != nil {
		logrus.WithError(err).WithField("beat_id", id).Warn("Failed to record play")
	}

	utils.SuccessResponse(c, gin.H{"recorded": true})
}

// MyBeats lists the authenticated producer's own beats, sold ones included.
func (h *BeatHandler) MyBeats(c *gin.Context) {
	userIDStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	producerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.beatService.ListByProducer(producerID, params)
	if err != nil {
		logrus.WithError(err).Error("Failed to list producer beats")
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, result)
}
