package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/internal/domain"
	"go.uber.org/zap"
)

// RunWebSocketHandler streams the messages of one run. A client first
// receives everything the run has produced so far, then live messages.
// The server closes the connection after the outcome.
type RunWebSocketHandler struct {
	runMgr *app.RunManager
	logger *zap.Logger
}

// NewRunWebSocketHandler creates a new run event stream handler
func NewRunWebSocketHandler(runMgr *app.RunManager, logger *zap.Logger) *RunWebSocketHandler {
	return &RunWebSocketHandler{
		runMgr: runMgr,
		logger: logger,
	}
}

// StreamEvents handles GET /api/v1/runs/:id/events
func (h *RunWebSocketHandler) StreamEvents(c *gin.Context) {
	id := c.Param("id")
	replay, live, unsubscribe, err := h.runMgr.Subscribe(id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("run_id", id), zap.String("remote_addr", c.Request.RemoteAddr))
	log.Debug("Run stream client connected", zap.Int("replay", len(replay)))

	for _, msg := range replay {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}

	done := readUntilClosed(conn)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-live:
			if !ok {
				// finished, or this client fell too far behind
				closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished")
				conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("Run stream client gone", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
