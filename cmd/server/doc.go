// Package main is the entry point for the fsgate server.
//
// fsgate exposes one directory over a token-protected REST API. Every
// path a client sends is confined to that directory.
//
// Configuration:
//   - Environment variables (12-factor), see internal/infrastructure/config
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve ./data on :3000
//	./server
//
//	# Custom root and port
//	./server -port 8080 -data /srv/files
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
