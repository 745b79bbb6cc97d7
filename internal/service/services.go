// Package service contains the business logic.
//
// It sits between the handler and repository layers: handlers hand it
// validated input, it applies the business rules and talks to the
// repositories and the object store.
package service

import (
	"github.com/arvield/cloudnotes/internal/repository"
	"github.com/arvield/cloudnotes/internal/server"
)

// Services is the container for all service instances.
type Services struct {
	Auth  *AuthService
	Notes *NotesService
}

// NewServices constructs the service container.
func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Auth:  NewAuthService(s, repos),
		Notes: NewNotesService(s, repos),
	}
}
