/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the fsgate
server, tracking HTTP requests, filesystem operations, payload bytes and
authentication failures. Each Metrics value owns its registry, so several
servers (or tests) can coexist in one process.

# Features

- HTTP request metrics (latency, throughput, size) labelled by route
- Filesystem operation metrics (count by outcome, duration)
- Payload byte counters (in, out)
- Auth failure counters by error code
- Go runtime, process and uptime metrics

# Usage

	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Feed filesystem measurements
	store, _ := filesystem.NewStore(filesystem.Config{Root: dir, Recorder: metrics})

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
