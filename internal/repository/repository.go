// Package repository handles all interactions with the database.
//
// It contains the raw SQL and the methods to fetch, persist and update
// data, keeping SQL out of the service layer. Repository methods
// return driver errors wrapped with context; translating them into
// HTTP responses happens in the global error handler (via sqlerr), and
// services branch on pgx.ErrNoRows where absence is a normal outcome.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row. Only superusers exist in practice: the
// bootstrap job creates one, and there is no self-registration.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	IsSuperuser  bool
	CreatedAt    time.Time
}

// Note is a single note row. AttachmentObject is the object-store key
// of the uploaded attachment, nil when there is none.
type Note struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Title            string
	Body             string
	AttachmentObject *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
