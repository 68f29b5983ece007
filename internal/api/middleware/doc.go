// Package middleware provides the HTTP middleware stack of the fsgate server.
//
// Middleware stack includes:
//   - RequestID: ULID request IDs carried in X-Request-ID
//   - AccessLog: One zap line per request
//   - SecurityHeaders: CSP and related hardening headers
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - BodyLimit: Request body size cap
//   - BearerAuth: Single shared-token gate for /api/files and /api/directories
//
// Every rejection carries the same {error, code} JSON body as handler
// errors.
//
// Rate Limiting:
//   - Per-IP tracking with idle client eviction
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.AccessLog(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
//	api.Use(middleware.BearerAuth(tokens, metrics))
package middleware
