package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/arvield/cloudnotes/internal/repository"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NotesService implements the note operations. Ownership scoping
// happens in the repository SQL; this layer adds the object-store
// side effects for attachments.
type NotesService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewNotesService(s *server.Server, repos *repository.Repositories) *NotesService {
	return &NotesService{server: s, repos: repos}
}

var noteNotFoundCode = "NOTE_NOT_FOUND"

func notFound(err error) (error, bool) {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewNotFoundError("Note not found", true, &noteNotFoundCode), true
	}
	return err, false
}

// List returns the owner's notes, newest first.
func (s *NotesService) List(ctx context.Context, ownerID uuid.UUID) ([]repository.Note, error) {
	return s.repos.Notes.ListByOwner(ctx, ownerID)
}

// Get fetches one note.
func (s *NotesService) Get(ctx context.Context, id, ownerID uuid.UUID) (repository.Note, error) {
	note, err := s.repos.Notes.Get(ctx, id, ownerID)
	if err != nil {
		mapped, _ := notFound(err)
		return repository.Note{}, mapped
	}
	return note, nil
}

// Create stores a new note.
func (s *NotesService) Create(ctx context.Context, ownerID uuid.UUID, title, body string) (repository.Note, error) {
	return s.repos.Notes.Create(ctx, repository.Note{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Title:   title,
		Body:    body,
	})
}

// Update replaces a note's title and body.
func (s *NotesService) Update(ctx context.Context, id, ownerID uuid.UUID, title, body string) (repository.Note, error) {
	note, err := s.repos.Notes.Update(ctx, id, ownerID, title, body)
	if err != nil {
		mapped, _ := notFound(err)
		return repository.Note{}, mapped
	}
	return note, nil
}

// Attach uploads an attachment to the bucket and records its key on
// the note. A previous attachment is deleted afterwards; if that
// cleanup fails the note is already consistent, so the error is only
// logged.
func (s *NotesService) Attach(ctx context.Context, id, ownerID uuid.UUID, filename, contentType string, r io.Reader) (repository.Note, error) {
	// Verify the note exists before paying for the upload.
	existing, err := s.repos.Notes.Get(ctx, id, ownerID)
	if err != nil {
		mapped, _ := notFound(err)
		return repository.Note{}, mapped
	}

	// Key layout: attachments/<note id>/<filename>. The note id keeps
	// uploads from different notes apart; re-uploading to the same
	// note with the same filename overwrites, which is what a user
	// replacing a file expects.
	key := fmt.Sprintf("attachments/%s/%s", id, filename)
	if err := s.server.Store.Put(ctx, key, contentType, r); err != nil {
		return repository.Note{}, fmt.Errorf("uploading attachment: %w", err)
	}

	note, err := s.repos.Notes.SetAttachment(ctx, id, ownerID, key)
	if err != nil {
		mapped, _ := notFound(err)
		return repository.Note{}, mapped
	}

	if prev := existing.AttachmentObject; prev != nil && *prev != key {
		if err := s.server.Store.Delete(ctx, *prev); err != nil {
			s.server.Logger.Warn().Err(err).Str("object", *prev).Msg("failed to delete replaced attachment")
		}
	}

	return note, nil
}

// Delete removes a note and its attachment object, if any.
func (s *NotesService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	attachment, err := s.repos.Notes.Delete(ctx, id, ownerID)
	if err != nil {
		mapped, _ := notFound(err)
		return mapped
	}

	if attachment != nil {
		if err := s.server.Store.Delete(ctx, *attachment); err != nil {
			s.server.Logger.Warn().Err(err).Str("object", *attachment).Msg("failed to delete attachment of removed note")
		}
	}

	return nil
}

// AttachmentURL reports where a note's attachment can be fetched.
// Empty when the note has none.
func (s *NotesService) AttachmentURL(note repository.Note) string {
	if note.AttachmentObject == nil {
		return ""
	}
	return s.server.Store.URL(*note.AttachmentObject)
}
