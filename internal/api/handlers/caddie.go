package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/api/middleware"
	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/services"
	"github.com/stitts-dev/golf-caddie/pkg/utils"
)

type CaddieHandler struct {
	decisions *services.DecisionService
	logger    *logrus.Logger
}

func NewCaddieHandler(decisions *services.DecisionService, logger *logrus.Logger) *CaddieHandler {
	return &CaddieHandler{
		decisions: decisions,
		logger:    logger,
	}
}

type DecisionRequest struct {
	PlayerID        string   `json:"player_id"`
	HoleNumber      int      `json:"hole_number"`
	DistanceM       *float64 `json:"distance_m" binding:"required"`
	HazardDistanceM *float64 `json:"hazard_distance_m"`
	HazardSide      string   `json:"hazard_side"`
	RiskPreference  string   `json:"risk_preference"`
}

type DecisionResponse struct {
	Decision       caddie.Decision       `json:"decision"`
	RecordID       *uuid.UUID            `json:"record_id,omitempty"`
	RiskPreference caddie.RiskPreference `json:"risk_preference"`
	MissingStats   []string              `json:"missing_stats,omitempty"`
	StaleStats     []string              `json:"stale_stats,omitempty"`
}

// MakeDecision recommends a club and strategy for one hole
// POST /api/v1/caddie/decision
func (h *CaddieHandler) MakeDecision(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	playerID, ok := resolvePlayer(c, req.PlayerID)
	if !ok {
		return
	}

	hazardSide, err := caddie.ParseHazardSide(req.HazardSide)
	if err != nil {
		utils.SendValidationError(c, "Invalid hazard side", err.Error())
		return
	}
	if !finite(*req.DistanceM) {
		utils.SendValidationError(c, "Invalid distance", "distance_m must be a finite number")
		return
	}
	if req.HazardDistanceM != nil && !finite(*req.HazardDistanceM) {
		utils.SendValidationError(c, "Invalid hazard distance", "hazard_distance_m must be a finite number")
		return
	}

	input := services.DecisionInput{
		PlayerID: playerID,
		Hole: caddie.Hole{
			Number:          req.HoleNumber,
			DistanceM:       *req.DistanceM,
			HazardDistanceM: req.HazardDistanceM,
			HazardSide:      hazardSide,
		},
	}
	if req.RiskPreference != "" {
		pref, err := caddie.ParseRiskPreference(req.RiskPreference)
		if err != nil {
			utils.SendValidationError(c, "Invalid risk preference", err.Error())
			return
		}
		input.Preference = &pref
	}

	outcome, err := h.decisions.Decide(c.Request.Context(), input)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Error("Caddie decision failed")
		respondError(c, err, "Failed to make caddie decision")
		return
	}

	resp := DecisionResponse{
		Decision:       outcome.Decision,
		RiskPreference: outcome.Preference,
		MissingStats:   outcome.MissingStats,
		StaleStats:     outcome.StaleStats,
	}
	if outcome.Record != nil {
		resp.RecordID = &outcome.Record.ID
	}
	utils.SendSuccess(c, resp)
}

// ListDecisions returns the player's recent decisions, newest first
// GET /api/v1/caddie/decisions?player_id=&limit=
func (h *CaddieHandler) ListDecisions(c *gin.Context) {
	playerID, ok := resolvePlayer(c, c.Query("player_id"))
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.SendValidationError(c, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.decisions.ListDecisions(c.Request.Context(), playerID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("player_id", playerID).Error("Failed to list decisions")
		utils.SendInternalError(c, "Failed to list decisions")
		return
	}

	utils.SendSuccessWithMeta(c, records, &utils.Meta{Total: int64(len(records))})
}

// resolvePlayer picks the token's player when authenticated. A request naming
// a different player is rejected.
func resolvePlayer(c *gin.Context, requested string) (string, bool) {
	if authed, ok := middleware.AuthenticatedPlayer(c); ok {
		if requested != "" && requested != authed {
			utils.SendUnauthorized(c, "Token does not belong to this player")
			return "", false
		}
		return authed, true
	}
	if requested == "" {
		utils.SendValidationError(c, "Missing player", "player_id is required")
		return "", false
	}
	return requested, true
}

func respondError(c *gin.Context, err error, fallback string) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case utils.ErrCodeUnknownClub, utils.ErrCodeNotFound:
			utils.SendError(c, http.StatusNotFound, appErr)
		case utils.ErrCodeValidation, utils.ErrCodeInvalidProfile:
			utils.SendError(c, http.StatusBadRequest, appErr)
		default:
			utils.SendError(c, http.StatusInternalServerError, appErr)
		}
		return
	}
	utils.SendInternalError(c, fallback)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
