package http

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/DeepthinkAI2025/ZOE-Solar-Webseite-Solaranbieter-sub019/internal/httputil"
)

const readinessTimeout = 2 * time.Second

// LoggingMiddleware logs every request at debug level, and server errors at warn.
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "ops request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(started)),
		)
	}
}

// RecoveryHandler turns a recovered panic into a generic 500 response.
func RecoveryHandler(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		reqLogger := logger.With(
			slog.String("request_id", requestid.Get(c)),
			slog.String("path", c.Request.URL.Path),
		)
		httputil.HandleError(c.Writer, fmt.Errorf("panic recovered: %v", recovered), reqLogger)
		c.Abort()
	}
}

// HealthHandler answers liveness probes.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadinessHandler runs every check in name order and answers 503 naming the failing
// ones. Check errors are logged, never returned to the caller.
func ReadinessHandler(checks map[string]ReadinessCheck, logger *slog.Logger) gin.HandlerFunc {
	names := slices.Sorted(maps.Keys(checks))

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		failing := []string{}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn("readiness check failed", slog.String("check", name), slog.Any("error", err))
				failing = append(failing, name)
			}
		}

		if len(failing) == 0 {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"failing": failing,
		})
	}
}
