package repository

import (
	"context"
	"fmt"

	"github.com/arvield/cloudnotes/internal/server"
	"github.com/google/uuid"
)

// NotesRepository persists Note rows. Every query is scoped by owner
// in SQL, so a note belonging to someone else behaves exactly like a
// note that does not exist.
type NotesRepository struct {
	server *server.Server
}

func NewNotesRepository(s *server.Server) *NotesRepository {
	return &NotesRepository{server: s}
}

const noteColumns = "id, owner_id, title, body, attachment_object, created_at, updated_at"

// ListByOwner returns the owner's notes, newest first.
func (r *NotesRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Note, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.AttachmentObject, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}

	return notes, nil
}

// Get fetches one of the owner's notes. Returns pgx.ErrNoRows (wrapped)
// when the note does not exist or belongs to someone else.
func (r *NotesRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (Note, error) {
	var n Note
	err := r.server.DB.Pool.QueryRow(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = $1 AND owner_id = $2",
		id, ownerID,
	).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.AttachmentObject, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("fetching note: %w", err)
	}
	return n, nil
}

// Create inserts a note and returns the stored row (to pick up the
// database-assigned timestamps).
func (r *NotesRepository) Create(ctx context.Context, n Note) (Note, error) {
	err := r.server.DB.Pool.QueryRow(ctx,
		`INSERT INTO notes (id, owner_id, title, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+noteColumns,
		n.ID, n.OwnerID, n.Title, n.Body,
	).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.AttachmentObject, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("creating note: %w", err)
	}
	return n, nil
}

// Update replaces a note's title and body. Returns pgx.ErrNoRows
// (wrapped) when the owner has no such note.
func (r *NotesRepository) Update(ctx context.Context, id, ownerID uuid.UUID, title, body string) (Note, error) {
	var n Note
	err := r.server.DB.Pool.QueryRow(ctx,
		`UPDATE notes SET title = $3, body = $4, updated_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+noteColumns,
		id, ownerID, title, body,
	).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.AttachmentObject, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("updating note: %w", err)
	}
	return n, nil
}

// SetAttachment records the object-store key of a note's attachment.
func (r *NotesRepository) SetAttachment(ctx context.Context, id, ownerID uuid.UUID, objectKey string) (Note, error) {
	var n Note
	err := r.server.DB.Pool.QueryRow(ctx,
		`UPDATE notes SET attachment_object = $3, updated_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+noteColumns,
		id, ownerID, objectKey,
	).Scan(&n.ID, &n.OwnerID, &n.Title, &n.Body, &n.AttachmentObject, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, fmt.Errorf("setting note attachment: %w", err)
	}
	return n, nil
}

// Delete removes one of the owner's notes and reports the attachment
// key that needs cleaning up, if any. Returns pgx.ErrNoRows (wrapped)
// when the owner has no such note.
func (r *NotesRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (*string, error) {
	var attachment *string
	err := r.server.DB.Pool.QueryRow(ctx,
		"DELETE FROM notes WHERE id = $1 AND owner_id = $2 RETURNING attachment_object",
		id, ownerID,
	).Scan(&attachment)
	if err != nil {
		return nil, fmt.Errorf("deleting note: %w", err)
	}
	return attachment, nil
}
