package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the API on router. gate guards every route that touches
// the sandbox; the auth handshake and health check stay open.
func (h *Handlers) Register(router gin.IRouter, gate gin.HandlerFunc) {
	router.GET("/health", h.Health)

	authGroup := router.Group("/api/auth")
	authGroup.POST("/setup", h.SetupAuth)
	authGroup.GET("/status", h.AuthStatus)

	api := router.Group("/api", gate)

	// Files
	api.GET("/files", h.ListFiles)
	api.GET("/files/*path", h.ReadFile)
	api.HEAD("/files/*path", h.ReadFile)
	api.POST("/files/*path", h.CreateFile)
	api.PUT("/files/*path", h.UpdateFile)
	api.DELETE("/files/*path", h.DeleteFile)

	// Directories
	api.GET("/directories", h.ListDirectory)
	api.GET("/directories/*path", h.ListDirectory)
	api.POST("/directories/*path", h.CreateDirectory)
	api.DELETE("/directories/*path", h.DeleteDirectory)

	// Browsing
	api.GET("/metadata/*path", h.Metadata)
	api.GET("/search", h.Search)
	api.GET("/archives/*path", h.Archive)

	if h.levels != nil {
		api.GET("/log/level", h.LogLevel)
		api.PUT("/log/level", h.UpdateLogLevel)
	}
}
