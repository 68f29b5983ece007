package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

// ListFiles lists the entries directly under the root
func (h *Handlers) ListFiles(c *gin.Context) {
	h.list(c, "")
}

// ReadFile streams a file. GET /api/files/ with no path lists the root.
func (h *Handlers) ReadFile(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	if rel.IsRoot() {
		h.list(c, rel)
		return
	}

	content, err := h.store.Open(c.Request.Context(), rel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer content.Close()

	c.Header("Last-Modified", content.Modified.UTC().Format(http.TimeFormat))
	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", content.MediaType)
		c.Header("Content-Length", strconv.FormatInt(content.Size, 10))
		c.Status(http.StatusOK)
		return
	}
	c.DataFromReader(http.StatusOK, content.Size, content.MediaType, content, nil)
}

// CreateFile creates or overwrites a file from a multipart, JSON, form or
// raw body
func (h *Handlers) CreateFile(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}

	err := withUpload(c, func(up upload) error {
		return h.store.CreateFile(c.Request.Context(), rel, up.body, up.size)
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "File created successfully")
}

// UpdateFile replaces the content of an existing file with {content}
func (h *Handlers) UpdateFile(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}

	var p filePayload
	if err := decodeJSON(c, &p); err != nil {
		h.respondError(c, err)
		return
	}
	if p.Content == nil {
		badRequest(c, "content is required")
		return
	}

	body := strings.NewReader(*p.Content)
	if err := h.store.UpdateFile(c.Request.Context(), rel, body, body.Size()); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "File updated successfully")
}

// DeleteFile removes a single file
func (h *Handlers) DeleteFile(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteFile(c.Request.Context(), rel); err != nil {
		h.respondError(c, err)
		return
	}
	message(c, "File deleted successfully")
}

func (h *Handlers) list(c *gin.Context, rel filesystem.RelativePath) {
	entries, err := h.store.List(c.Request.Context(), rel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
