// Package handler holds the HTTP handlers.
//
// Handlers own the HTTP layer only: bind and validate the request,
// call a service, shape the response. Business rules live in the
// service layer.
package handler

import (
	"github.com/arvield/cloudnotes/internal/server"
)

// Handler provides shared dependencies (config, logger) to the
// concrete handlers that embed it.
type Handler struct {
	server *server.Server
}
