package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// RunHandler handles run-related HTTP requests
type RunHandler struct {
	runMgr *app.RunManager
	logger *zap.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(runMgr *app.RunManager, logger *zap.Logger) *RunHandler {
	return &RunHandler{
		runMgr: runMgr,
		logger: logger,
	}
}

// StartRun handles POST /api/v1/runs
func (h *RunHandler) StartRun(c *gin.Context) {
	var req app.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.runMgr.StartRun(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to start run", err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	record, err := h.runMgr.GetRun(c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to get run", err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListRuns handles GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	filters := make(map[string]interface{})
	for _, key := range []string{"state", "outcome", "mode"} {
		if value := c.Query(key); value != "" {
			filters[key] = value
		}
	}

	runs, err := h.runMgr.ListRuns(filters)
	if err != nil {
		h.respondError(c, "Failed to list runs", err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

// GetStats handles GET /api/v1/runs/stats
func (h *RunHandler) GetStats(c *gin.Context) {
	stats, err := h.runMgr.GetStats()
	if err != nil {
		h.respondError(c, "Failed to get stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetActive handles GET /api/v1/runs/active
func (h *RunHandler) GetActive(c *gin.Context) {
	record, ok := h.runMgr.ActiveRun()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active run"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// CancelRun handles POST /api/v1/runs/:id/cancel
func (h *RunHandler) CancelRun(c *gin.Context) {
	record, err := h.runMgr.CancelRun(c.Param("id"))
	if err != nil {
		h.respondError(c, "Failed to cancel run", err)
		return
	}

	c.JSON(http.StatusAccepted, record)
}

// respondError maps domain errors to status codes. Only unexpected errors
// are logged.
func (h *RunHandler) respondError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRunActive), errors.Is(err, domain.ErrRunNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyURL),
		errors.Is(err, domain.ErrEmptyTargetDir),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidQuality):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
