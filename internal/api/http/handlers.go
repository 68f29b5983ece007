package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsgate/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/fsgate/internal/providers/auth"
	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store   *filesystem.Store
	tokens  *auth.TokenStore
	metrics *monitoring.Metrics
	logger  *zap.Logger
	levels  LevelControl
}

// NewHandlers creates a new handler set. metrics and logger may be nil.
func NewHandlers(store *filesystem.Store, tokens *auth.TokenStore, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		store:   store,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}
}

// Root describes the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "fsgate",
		"endpoints": gin.H{
			"auth":        "/api/auth",
			"files":       "/api/files",
			"directories": "/api/directories",
			"metadata":    "/api/metadata",
			"search":      "/api/search",
			"archives":    "/api/archives",
			"log_level":   "/api/log/level",
			"health":      "/health",
		},
	})
}

// Health reports liveness and the served root
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
		"root":   h.store.Root(),
		"auth":   gin.H{"configured": h.tokens.IsSet()},
	}
	if h.metrics != nil {
		snap := h.metrics.Snapshot()
		resp["uptime_seconds"] = int64(h.metrics.Uptime().Seconds())
		resp["requests"] = gin.H{
			"total":              snap.TotalRequests,
			"errors":             snap.TotalErrors,
			"avg_latency_millis": snap.AverageLatency() * 1000,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// resolve turns the raw wildcard parameter into a sandboxed path
func (h *Handlers) resolve(raw string) (filesystem.RelativePath, error) {
	// gin wildcards keep their leading slash; the path itself is root-relative
	if len(raw) > 0 && raw[0] == '/' {
		raw = raw[1:]
	}
	return h.store.Resolve(raw)
}

// pathParam resolves the "path" wildcard of the current route
func (h *Handlers) pathParam(c *gin.Context) (filesystem.RelativePath, bool) {
	rel, err := h.resolve(c.Param("path"))
	if err != nil {
		h.respondError(c, err)
		return "", false
	}
	return rel, true
}

func message(c *gin.Context, text string) {
	c.JSON(http.StatusOK, gin.H{"message": text})
}
