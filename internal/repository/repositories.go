package repository

import (
	"github.com/arvield/cloudnotes/internal/server"
)

// Repositories is the container for all repository instances. Handlers
// and services receive this one object instead of individual repos, so
// adding a repository never changes wiring signatures.
type Repositories struct {
	Users *UsersRepository
	Notes *NotesRepository
}

// NewRepositories constructs the repository container from the shared
// application container (the pool lives on s.DB).
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Users: NewUsersRepository(s),
		Notes: NewNotesRepository(s),
	}
}
