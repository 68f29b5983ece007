package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/fsgate/internal/providers/auth"
)

type setupRequest struct {
	Token string `json:"token"`
}

// SetupAuth registers the shared bearer token. Resubmitting the registered
// token succeeds; a different one is a conflict.
func (h *Handlers) SetupAuth(c *gin.Context) {
	var req setupRequest
	if err := decodeJSON(c, &req); err != nil {
		h.respondError(c, err)
		return
	}

	err := h.tokens.Set(req.Token)
	switch {
	case err == nil:
		message(c, "Token set successfully")
	case errors.Is(err, auth.ErrInvalidToken):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "Token is required", Code: CodeTokenRequired})
	case errors.Is(err, auth.ErrTokenConflict):
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{Error: "Token already set", Code: CodeTokenConflict})
	default:
		h.respondError(c, err)
	}
}

// AuthStatus reports whether a token has been registered
func (h *Handlers) AuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": h.tokens.IsSet()})
}
