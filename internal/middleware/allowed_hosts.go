package middleware

import (
	"net"
	"strings"

	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/labstack/echo/v4"
)

// AllowedHosts enforces the Host-header allow-list produced by the
// startup configuration resolver.
//
// When the deployment identity was fully resolved, the list contains
// exactly the host of the service's public URL and any other Host
// header is rejected with 400. When identity could not be resolved,
// the list is ["*"] and every host passes. Host matching ignores the
// port and letter case.
func (global *GlobalMiddlewares) AllowedHosts() echo.MiddlewareFunc {
	allowed := make(map[string]bool)
	wildcard := false
	for _, host := range global.server.Config.Deployment.AllowedHosts {
		if host == "*" {
			wildcard = true
			continue
		}
		allowed[strings.ToLower(stripPort(host))] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if wildcard {
				return next(c)
			}

			host := strings.ToLower(stripPort(c.Request().Host))
			if host == "" || !allowed[host] {
				return errs.NewBadRequestError("Invalid Host header", false, nil, nil)
			}

			return next(c)
		}
	}
}

// stripPort removes the :port suffix from a host, tolerating hosts
// that never had one.
func stripPort(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}
