package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab/pkg/logger"
	"go.uber.org/zap"
)

// Recovery returns a gin middleware for panic recovery
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return recovery(func(msg string, fields ...zap.Field) {
		log.Error(msg, fields...)
	})
}

// RecoveryWithAdapter recovers panics and records them in the error log
func RecoveryWithAdapter(logAdapter *logger.LoggerAdapter) gin.HandlerFunc {
	return recovery(logAdapter.LogAppError)
}

func recovery(logError func(msg string, fields ...zap.Field)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("client_ip", c.ClientIP()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
