package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// TokenVerifier checks a presented bearer token
type TokenVerifier interface {
	Verify(token string) bool
}

// AuthFailureRecorder counts rejected requests
type AuthFailureRecorder interface {
	RecordAuthFailure(code string)
}

// BearerAuth rejects requests whose Authorization header does not carry the
// registered token. Nothing behind it runs for a rejected request.
func BearerAuth(tokens TokenVerifier, recorder AuthFailureRecorder) gin.HandlerFunc {
	reject := func(c *gin.Context, message, code string) {
		if recorder != nil {
			recorder.RecordAuthFailure(code)
		}
		abortWithError(c, http.StatusUnauthorized, message, code)
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			reject(c, "No token provided", CodeTokenMissing)
			return
		}

		// The token is the first space-separated word after the scheme
		token, _, _ := strings.Cut(header[len(bearerPrefix):], " ")
		if !tokens.Verify(token) {
			reject(c, "Invalid token", CodeTokenInvalid)
			return
		}

		c.Next()
	}
}
