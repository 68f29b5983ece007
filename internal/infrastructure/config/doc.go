// Package config provides 12-factor configuration management for the fsgate server.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP listen address and optional static UI directory
//   - Storage: Sandbox root, upload limit, traversal policy
//   - Auth: Optional pre-configured bearer token
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Metrics: Prometheus endpoint toggle
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Serving %s on %s\n", cfg.Storage.DataDir, cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST, STATIC_DIR
//   - DATA_DIR, MAX_UPLOAD_BYTES, TRAVERSAL_POLICY, LIST_CONCURRENCY
//   - AUTH_TOKEN
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - METRICS_ENABLED
package config
