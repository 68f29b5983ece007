package http

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

// Metadata describes a node, sniffing content type and charset for files
func (h *Handlers) Metadata(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	meta, err := h.store.Metadata(c.Request.Context(), rel)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// Search matches a glob against paths under ?path=
func (h *Handlers) Search(c *gin.Context) {
	pattern := c.Query("pattern")
	if pattern == "" {
		badRequest(c, "pattern is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	base, err := h.resolve(c.Query("path"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.store.Search(c.Request.Context(), base, pattern, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Archive streams a compressed tarball of a directory
func (h *Handlers) Archive(c *gin.Context) {
	rel, ok := h.pathParam(c)
	if !ok {
		return
	}
	format, err := filesystem.ParseArchiveFormat(c.Query("format"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.CheckArchivable(rel); err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": h.store.ArchiveName(rel, format),
	}))
	c.Status(http.StatusOK)

	if err := h.store.WriteArchive(c.Request.Context(), rel, format, c.Writer); err != nil {
		if !c.Writer.Written() {
			h.respondError(c, err)
			return
		}
		// Headers are gone; the client sees a truncated stream
		h.logger.Warn("Archive stream aborted",
			zap.String("path", rel.String()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.Abort()
	}
}
