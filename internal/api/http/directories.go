package http

import (
	"github.com/gin-gonic/gin"
)

// ListDirectory lists a directory; the bare endpoint lists the root
func (h *Handlers) ListDirectory(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	h.list(c, rel)
}

// CreateDirectory creates one directory. Parents are never created.
func (h *Handlers) CreateDirectory(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	if err := h.store.CreateDirectory(c.Request.Context(), rel); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "Directory created successfully")
}

// DeleteDirectory removes an empty directory
func (h *Handlers) DeleteDirectory(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteDirectory(c.Request.Context(), rel); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "Directory deleted successfully")
}
