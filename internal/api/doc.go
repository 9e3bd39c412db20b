// Package api implements the HTTP REST API and WebSocket server for PowerCore.
//
// This package provides:
//   - REST endpoints for device power state, runtime get/put, and direct
//     state changes
//   - Bulk suspend/resume endpoints for system sleep entry and exit
//   - Transition history queries backed by the SQLite repository
//   - WebSocket hub for real-time transition broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between operator tooling and the power engine.
// State change requests call the engine directly; completed transitions
// flow back through the engine's event sinks, one of which broadcasts
// to WebSocket clients via TransitionSink.
//
// # Security
//
// Authentication uses HS256 JWT bearer tokens with a 3-tier role model:
// viewer reads state and history, operator changes device state, admin
// runs bulk operations. WebSocket connections use single-use tickets to
// prevent token leakage in URLs.
//
// # Graceful Degradation
//
// The server operates without a history repository; the history
// endpoints report not found and everything else works.
package api
