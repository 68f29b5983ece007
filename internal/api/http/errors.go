package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

// statusClientClosedRequest is logged when the client went away mid-request
const statusClientClosedRequest = 499

// Codes produced by the handlers themselves
const (
	CodeTokenConflict = "TOKEN_CONFLICT"
	CodeTokenRequired = "TOKEN_REQUIRED"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusFor maps an error kind onto an HTTP status
func StatusFor(kind filesystem.Kind) int {
	switch kind {
	case filesystem.KindNotFound, filesystem.KindParentNotFound:
		return http.StatusNotFound
	case filesystem.KindBadType, filesystem.KindBadRequest:
		return http.StatusBadRequest
	case filesystem.KindAlreadyExists, filesystem.KindNotEmpty:
		return http.StatusConflict
	case filesystem.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the structured error body for err
func (h *Handlers) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	if errors.Is(err, context.Canceled) {
		c.AbortWithStatus(statusClientClosedRequest)
		return
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "payload exceeds the upload limit",
			Code:  filesystem.CodePayloadTooLarge,
		})
		return
	}

	var fsErr *filesystem.Error
	if errors.As(err, &fsErr) {
		c.AbortWithStatusJSON(StatusFor(fsErr.Kind), ErrorResponse{Error: fsErr.Message, Code: fsErr.Code})
		return
	}

	h.logger.Error("Unhandled request error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: "Internal server error",
		Code:  filesystem.CodeInternal,
	})
}

func badRequest(c *gin.Context, text string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: text, Code: filesystem.CodeBadRequest})
}
