package handler

import (
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/arvield/cloudnotes/internal/service"
)

// Handlers is the container for all handler instances.
type Handlers struct {
	Health *HealthHandler
	Auth   *AuthHandler
	Notes  *NotesHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Auth:   NewAuthHandler(s, services),
		Notes:  NewNotesHandler(s, services),
	}
}
