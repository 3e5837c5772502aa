// Package api provides HTTP handlers for relationship collections.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/dbpool"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store         HealthChecker
	log           *logrus.Logger
	backend       string
	version       string
	schemaVersion int
	startTime     time.Time
}

// NewHealthHandler creates a HealthHandler. store may be nil for backends
// that live in process.
func NewHealthHandler(store HealthChecker, log *logrus.Logger, backend, version string, schemaVersion int) *HealthHandler {
	return &HealthHandler{
		store:         store,
		log:           log,
		backend:       backend,
		version:       version,
		schemaVersion: schemaVersion,
		startTime:     time.Now(),
	}
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Backend       string  `json:"backend"`
	Store         string  `json:"store"`
	SchemaVersion int     `json:"schema_version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Pool   *dbpool.Stats     `json:"pool,omitempty"`
}

// Liveness handles GET /api/v1/health. A store outage is reported but
// does not fail liveness.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Backend:       h.backend,
		Store:         "connected",
		SchemaVersion: h.schemaVersion,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.store == nil {
		resp.Store = "in_process"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.HealthCheck(ctx); err != nil {
			resp.Store = "disconnected"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"store": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.store.HealthCheck(ctx); err != nil {
			h.log.WithError(err).WithField("backend", h.backend).Error("readiness: store health check failed")
			checks["store"] = "error"
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	resp := readinessResponse{Status: status, Checks: checks}
	if pr, ok := h.store.(PoolReporter); ok {
		st := pr.Stats()
		resp.Pool = &st
	}

	c.JSON(statusCode, resp)
}
