package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LevelControl reads and changes the minimum log level at runtime
type LevelControl interface {
	Level() string
	SetLevel(level string) error
}

type logLevelRequest struct {
	Level string `json:"level"`
}

// SetLevelControl enables the log level routes
func (h *Handlers) SetLevelControl(levels LevelControl) {
	h.levels = levels
}

// LogLevel reports the current minimum log level
func (h *Handlers) LogLevel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"level": h.levels.Level()})
}

// UpdateLogLevel changes the minimum log level without a restart
func (h *Handlers) UpdateLogLevel(c *gin.Context) {
	var req logLevelRequest
	if err := decodeJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}
	if req.Level == "" {
		badRequest(c, "level is required")
		return
	}

	previous := h.levels.Level()
	if err := h.levels.SetLevel(req.Level); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.logger.Info("Log level changed",
		zap.String("from", previous),
		zap.String("to", h.levels.Level()),
	)
	c.JSON(http.StatusOK, gin.H{"level": h.levels.Level()})
}
