// Package router wires handlers and middleware into the Echo
// instance that serves the HTTP API.
package router

import (
	"github.com/arvield/cloudnotes/internal/handler"
	"github.com/arvield/cloudnotes/internal/middleware"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/labstack/echo/v4"
)

// New builds the Echo instance: global middleware, the error handler
// and every route group.
func New(s *server.Server, middlewares *middleware.Middlewares, handlers *handler.Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = s.Config.Debug

	e.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id must exist before the logger
	// derives its fields, and the host check runs before any handler
	// work is done.
	e.Use(middleware.RequestID())
	e.Use(middlewares.ContextEnhancer.EnhanceContext())
	e.Use(middlewares.Global.RequestLogger())
	e.Use(middlewares.Global.Recover())
	e.Use(middlewares.Global.Secure())
	e.Use(middlewares.Global.AllowedHosts())
	e.Use(middlewares.Global.CORS())
	e.Use(middlewares.RateLimit.Limit())

	registerSystemRoutes(e, handlers)

	api := e.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/login", handlers.Auth.Login)
	authGroup.POST("/logout", handlers.Auth.Logout)

	notes := api.Group("/notes", middlewares.Auth.Authenticate())
	notes.GET("", handlers.Notes.List)
	notes.POST("", handlers.Notes.Create)
	notes.GET("/:id", handlers.Notes.Get)
	notes.PUT("/:id", handlers.Notes.Update)
	notes.DELETE("/:id", handlers.Notes.Delete)
	notes.POST("/:id/attachment", handlers.Notes.Attach)

	return e
}
