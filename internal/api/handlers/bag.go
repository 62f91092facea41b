package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/services"
	"github.com/stitts-dev/golf-caddie/pkg/utils"
)

type BagHandler struct {
	bags       *services.BagService
	defaults   caddie.DefaultCarryTable
	minSamples int
	logger     *logrus.Logger
}

func NewBagHandler(bags *services.BagService, defaults caddie.DefaultCarryTable, minSamples int, logger *logrus.Logger) *BagHandler {
	return &BagHandler{
		bags:       bags,
		defaults:   defaults,
		minSamples: minSamples,
		logger:     logger,
	}
}

type UpdateClubsRequest struct {
	Clubs []services.ClubUpdate `json:"clubs" binding:"required,min=1,dive"`
}

type RecordShotRequest struct {
	ClubID string  `json:"club_id" binding:"required"`
	CarryM float64 `json:"carry_m" binding:"required"`
}

// GetBag returns the player's clubs, creating the default bag when missing
// GET /api/v1/bag/:player_id
func (h *BagHandler) GetBag(c *gin.Context) {
	playerID, ok := resolvePlayer(c, c.Param("player_id"))
	if !ok {
		return
	}

	clubs, err := h.bags.GetBag(c.Request.Context(), playerID)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Error("Failed to load bag")
		utils.SendInternalError(c, "Failed to load bag")
		return
	}
	utils.SendSuccess(c, clubs)
}

// UpdateClubs toggles, renames or sets manual carries for clubs
// PATCH /api/v1/bag/:player_id/clubs
func (h *BagHandler) UpdateClubs(c *gin.Context) {
	playerID, ok := resolvePlayer(c, c.Param("player_id"))
	if !ok {
		return
	}

	var req UpdateClubsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	clubs, err := h.bags.UpdateClubs(c.Request.Context(), playerID, req.Clubs)
	if err != nil {
		respondError(c, err, "Failed to update clubs")
		return
	}
	utils.SendSuccess(c, clubs)
}

// RecordShot adds one carry to a club's distance data
// POST /api/v1/bag/:player_id/shots
func (h *BagHandler) RecordShot(c *gin.Context) {
	playerID, ok := resolvePlayer(c, c.Param("player_id"))
	if !ok {
		return
	}

	var req RecordShotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	club, err := h.bags.RecordShot(c.Request.Context(), playerID, req.ClubID, req.CarryM)
	if err != nil {
		respondError(c, err, "Failed to record shot")
		return
	}
	utils.SendCreated(c, club)
}

// GetReadiness grades how well the bag is calibrated
// GET /api/v1/bag/:player_id/readiness
func (h *BagHandler) GetReadiness(c *gin.Context) {
	playerID, ok := resolvePlayer(c, c.Param("player_id"))
	if !ok {
		return
	}

	readiness, ok, err := h.bags.Readiness(c.Request.Context(), playerID, h.defaults, h.minSamples)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Error("Failed to compute bag readiness")
		utils.SendInternalError(c, "Failed to compute bag readiness")
		return
	}
	if !ok {
		utils.SendNotFound(c, "No active clubs in the bag")
		return
	}
	utils.SendSuccess(c, readiness)
}
