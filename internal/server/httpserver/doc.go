// Package httpserver provides the HTTP server for cardchat.
//
// It uses the Go standard library net/http. Every request passes through
// RequestID, ClientIP, Recover and CORS. The API routes then apply, in
// order, the global rate limiter, the method check, the chat rate limiter
// and the CSRF guard before reaching the handler:
//
//	GET  /api/csrf-token   issue a token
//	POST /api/chat         answer a question (CSRF protected)
//	GET  /health, /ready   liveness and readiness
//	GET  /metrics          Prometheus exposition
//	GET  /                 welcome text
package httpserver
