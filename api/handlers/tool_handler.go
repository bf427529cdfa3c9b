package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab/internal/infrastructure"
	"go.uber.org/zap"
)

// VideoInfoFetcher looks up metadata for a URL
type VideoInfoFetcher interface {
	FetchVideoInfo(ctx context.Context, url string) (*infrastructure.VideoInfo, error)
}

// DependencyChecker reports which external tools are installed
type DependencyChecker interface {
	Probe(ctx context.Context) infrastructure.DependencyReport
}

// ToolHandler exposes the yt-dlp helpers that do not start a run
type ToolHandler struct {
	info   VideoInfoFetcher
	deps   DependencyChecker
	logger *zap.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(info VideoInfoFetcher, deps DependencyChecker, logger *zap.Logger) *ToolHandler {
	return &ToolHandler{
		info:   info,
		deps:   deps,
		logger: logger,
	}
}

// InfoResponse is VideoInfo plus its formatted duration
type InfoResponse struct {
	*infrastructure.VideoInfo
	DurationString string `json:"duration_string"`
}

// GetInfo handles GET /api/v1/info?url=
func (h *ToolHandler) GetInfo(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'url' is required"})
		return
	}

	info, err := h.info.FetchVideoInfo(c.Request.Context(), url)
	if err != nil {
		h.logger.Warn("Failed to fetch video info", zap.String("url", url), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, InfoResponse{VideoInfo: info, DurationString: info.DurationString()})
}

// GetDependencies handles GET /api/v1/deps
func (h *ToolHandler) GetDependencies(c *gin.Context) {
	report := h.deps.Probe(c.Request.Context())
	c.JSON(http.StatusOK, report)
}
