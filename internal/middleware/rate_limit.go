package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/arvield/cloudnotes/internal/server"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	// rateLimitPerSecond is the steady request rate allowed per client.
	rateLimitPerSecond = 20
	// rateLimitBurst is the number of requests a client may issue at once.
	rateLimitBurst = 40
	// limiterIdleTTL is how long an idle client entry is kept before
	// being swept.
	limiterIdleTTL = 3 * time.Minute
)

// RateLimitMiddleware applies a per-client token bucket keyed by the
// client IP. Cloud Run fronts the service with a load balancer, so the
// client IP comes from X-Forwarded-For via echo's RealIP.
type RateLimitMiddleware struct {
	server *server.Server

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server:    s,
		limiters:  make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

// Limit rejects requests with 429 once a client exhausts its bucket.
func (m *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}

func (m *RateLimitMiddleware) allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastSweep) > limiterIdleTTL {
		for ip, entry := range m.limiters {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(m.limiters, ip)
			}
		}
		m.lastSweep = now
	}

	entry, ok := m.limiters[key]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rateLimitPerSecond), rateLimitBurst)}
		m.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.Allow()
}
