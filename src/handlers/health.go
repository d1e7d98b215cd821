package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// Pinger reports store health
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db          Pinger // nil when running on the in-memory store
	environment string
	version     string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, environment, version string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		environment: environment,
		version:     version,
	}
}

// HandleHealth returns health status with DB check
func (hh *HealthHandler) HandleHealth(c *gin.Context) {
	body := gin.H{
		"success":     true,
		"message":     "Admin API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": hh.environment,
		"uptime":      time.Since(startTime).String(),
	}

	if hh.db == nil {
		body["database"] = "memory"
		c.JSON(http.StatusOK, body)
		return
	}

	start := time.Now()
	err := hh.db.Health(c.Request.Context())
	dbLatency := time.Since(start)

	if err != nil {
		body["success"] = false
		body["message"] = "Database unavailable"
		body["database"] = "disconnected"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["database"] = "connected"
	body["db_latency"] = dbLatency.String()
	c.JSON(http.StatusOK, body)
}

// HandleReady returns readiness status (for load balancers)
func (hh *HealthHandler) HandleReady(c *gin.Context) {
	if hh.db != nil {
		if err := hh.db.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}

// HandleInfo returns service information
func (hh *HealthHandler) HandleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Manehej Admin API",
		"version": hh.version,
		"endpoints": gin.H{
			"health": "/health",
			"auth":   "/api/admin/auth",
		},
	})
}
