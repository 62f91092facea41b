package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/services"
	"github.com/stitts-dev/golf-caddie/pkg/database"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db            *database.DB
	redis         Pinger
	breakers      *services.CircuitBreakerService
	recalibration *services.RecalibrationService
	logger        *logrus.Logger
}

func NewHealthHandler(
	db *database.DB,
	redis Pinger,
	breakers *services.CircuitBreakerService,
	recalibration *services.RecalibrationService,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:            db,
		redis:         redis,
		breakers:      breakers,
		recalibration: recalibration,
		logger:        logger,
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := HealthStatus{
		Status:    "ok",
		Service:   "caddie-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.db.HealthCheck(); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "failed: " + err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			response.Status = "unhealthy"
			response.Checks["redis"] = "failed: " + err.Error()
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "ok" {
		h.logger.WithField("checks", response.Checks).Warn("Health check failed")
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetReady reports whether the service can take traffic. An open breaker
// degrades decisions but does not make the service unready.
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := HealthStatus{
		Status:    "ready",
		Service:   "caddie-service",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.db.HealthCheck(); err != nil {
		response.Status = "not_ready"
		response.Checks["database"] = "failed: " + err.Error()
	} else {
		response.Checks["database"] = "ok"
	}

	if h.breakers != nil {
		for name, state := range h.breakers.States() {
			response.Checks["breaker_"+name] = state
		}
	}

	if h.recalibration != nil {
		if h.recalibration.IsRunning() {
			response.Checks["recalibration"] = "scheduled"
		} else {
			response.Checks["recalibration"] = "stopped"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}
