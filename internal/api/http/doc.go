// Package http provides HTTP handlers and routing for the fsgate REST API.
//
// This package implements all HTTP endpoints using the Gin framework. Every
// path segment after a resource prefix is resolved through the sandbox
// before any filesystem call is made.
//
// Endpoints:
//   - Health: /health
//   - Auth: /api/auth/setup, /api/auth/status
//   - Files: /api/files, /api/files/{path} (GET, HEAD, POST, PUT, DELETE)
//   - Directories: /api/directories, /api/directories/{path} (GET, POST, DELETE)
//   - Browsing: /api/metadata/{path}, /api/search, /api/archives/{path}
//
// Errors are always JSON of the form {"error": "...", "code": "..."}:
//
//	400 BAD_REQUEST, NOT_A_FILE, NOT_A_DIRECTORY, PARENT_NOT_DIRECTORY
//	401 TOKEN_MISSING, TOKEN_INVALID
//	404 NOT_FOUND, PARENT_NOT_FOUND
//	409 ALREADY_EXISTS, NOT_EMPTY, TOKEN_CONFLICT
//	413 PAYLOAD_TOO_LARGE
//	500 INTERNAL
//
// Example Usage:
//
//	handlers := http.NewHandlers(store, tokens, metrics, logger)
//	handlers.Register(router, middleware.BearerAuth(tokens, metrics))
package http
