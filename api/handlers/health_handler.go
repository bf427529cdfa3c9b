package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab/internal/app"
)

// Version is reported by the health endpoint
var Version = "dev"

// HealthHandler handles health check requests
type HealthHandler struct {
	runMgr *app.RunManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(runMgr *app.RunManager) *HealthHandler {
	return &HealthHandler{
		runMgr: runMgr,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	ActiveRun string `json:"active_run,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	if record, ok := h.runMgr.ActiveRun(); ok {
		response.ActiveRun = record.ID
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if _, err := h.runMgr.GetStats(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "run registry unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
