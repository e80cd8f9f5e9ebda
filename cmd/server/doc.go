// Package main is the entry point for the ReportDeck backend server.
//
// This application manages per-user dashboard widget containers: ordered
// collections of report widgets scoped to a dashboard context and persisted
// through a pluggable preference store.
//
// The server provides:
//   - REST API for container management (add, list, update, reorder, remove)
//   - Widget catalog and per-widget configuration forms
//   - WebSocket streaming of container change events
//   - Prometheus metrics and a JSON stats endpoint
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 9600
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
