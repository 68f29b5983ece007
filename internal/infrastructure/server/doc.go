// Package server wires configuration, logging, metrics, the sandboxed
// filesystem and the HTTP API into a runnable server.
//
// Server Lifecycle:
//  1. Validate configuration
//  2. Initialize logger (production or development)
//  3. Create metrics and open the data directory
//  4. Seed the bearer token from AUTH_TOKEN when present
//  5. Setup middleware and routes
//  6. Serve until the context is cancelled
//  7. Drain in-flight requests and flush logs
//
// Middleware order: recovery, request ID, access log, security headers,
// metrics, CORS, rate limiting, body limit. Authentication is applied per
// route group by the API package.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
