package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/vidgrab/api/handlers"
	"github.com/yourusername/vidgrab/api/middleware"
	"github.com/yourusername/vidgrab/internal/app"
	"github.com/yourusername/vidgrab/pkg/logger"
)

// RouterDeps are the services the HTTP API is built on
type RouterDeps struct {
	RunManager *app.RunManager
	Info       handlers.VideoInfoFetcher
	Deps       handlers.DependencyChecker
	LogAdapter *logger.LoggerAdapter
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	general := deps.LogAdapter.General()

	router.Use(middleware.LoggerWithAdapter(deps.LogAdapter))
	router.Use(middleware.RecoveryWithAdapter(deps.LogAdapter))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(deps.RunManager)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		runHandler := handlers.NewRunHandler(deps.RunManager, general)
		streamHandler := handlers.NewRunWebSocketHandler(deps.RunManager, general)
		runs := v1.Group("/runs")
		{
			runs.POST("", runHandler.StartRun)
			runs.GET("", runHandler.ListRuns)
			runs.GET("/stats", runHandler.GetStats)
			runs.GET("/active", runHandler.GetActive)
			runs.GET("/:id", runHandler.GetRun)
			runs.POST("/:id/cancel", runHandler.CancelRun)
			runs.GET("/:id/events", streamHandler.StreamEvents)
		}

		toolHandler := handlers.NewToolHandler(deps.Info, deps.Deps, general)
		v1.GET("/info", toolHandler.GetInfo)
		v1.GET("/deps", toolHandler.GetDependencies)

		// Category logs exist only when the server writes log files
		if logsDir := deps.LogAdapter.LogsDir(); logsDir != "" {
			logHandler := handlers.NewLogHandler(logsDir)
			logStream := handlers.NewLogWebSocketHandler(logsDir, general)
			logs := v1.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/dates", logHandler.GetDates)
				logs.GET("/:category/export", logHandler.ExportLogs)
				logs.GET("/:category/stream", logStream.HandleWebSocket)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
