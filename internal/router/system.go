package router

import (
	"github.com/arvield/cloudnotes/internal/handler"
	"github.com/arvield/cloudnotes/internal/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes adds the routes that are not part of the
// business API: health, docs and the embedded static assets.
//
// In production the static files are also synced to the bucket by the
// migrate job and served from there; this route keeps local
// development self-contained.
func registerSystemRoutes(e *echo.Echo, handlers *handler.Handlers) {
	e.GET("/status", handlers.Health.Status)
	e.StaticFS("/static", static.FS())
	e.FileFS("/docs", "docs.html", static.FS())
}
