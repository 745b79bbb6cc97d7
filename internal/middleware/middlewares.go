// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns: host
// allow-list enforcement, session authentication, request logging,
// CORS, rate limiting and panic recovery.
package middleware

import (
	"github.com/arvield/cloudnotes/internal/server"
)

// Middlewares groups all middleware components used by the HTTP
// server, so routing code receives one object with everything wired.
type Middlewares struct {
	// Global holds common middleware applied to the whole API: CORS,
	// request logging, recovery, secure headers, host allow-list and
	// the global error handler.
	Global *GlobalMiddlewares

	// Auth authenticates requests from the session cookie and attaches
	// the user identity to the request context.
	Auth *AuthMiddleware

	// ContextEnhancer enriches each request with a request-scoped
	// logger (request_id, method, path, ip, optional user).
	ContextEnhancer *ContextEnhancer

	// RateLimit applies a per-client token bucket.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components from the
// application container.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
