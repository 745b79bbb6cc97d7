package handler

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/arvield/cloudnotes/internal/middleware"
	"github.com/arvield/cloudnotes/internal/repository"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/arvield/cloudnotes/internal/service"
	"github.com/arvield/cloudnotes/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxAttachmentSize caps attachment uploads at 10 MiB.
const maxAttachmentSize = 10 << 20

// NotesHandler exposes the note CRUD and attachment endpoints. Every
// route requires an authenticated session; ownership comes from the
// token, never from the request body.
type NotesHandler struct {
	Handler
	services *service.Services
}

func NewNotesHandler(s *server.Server, services *service.Services) *NotesHandler {
	return &NotesHandler{Handler{server: s}, services}
}

type NoteRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=20000"`
}

func (r *NoteRequest) Validate() error {
	return validation.Struct(r)
}

type noteResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (h *NotesHandler) toResponse(note repository.Note) noteResponse {
	return noteResponse{
		ID:            note.ID,
		Title:         note.Title,
		Body:          note.Body,
		AttachmentURL: h.services.Notes.AttachmentURL(note),
		CreatedAt:     note.CreatedAt,
		UpdatedAt:     note.UpdatedAt,
	}
}

// ownerID reads the authenticated user's id from the context. The
// auth middleware guarantees it is present on these routes; a parse
// failure means a malformed token subject and is treated as 401.
func ownerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(middleware.GetUserID(c))
	if err != nil {
		return uuid.Nil, errs.NewUnauthorizedError("Invalid session", false)
	}
	return id, nil
}

func noteID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("Note id must be a valid UUID", true, nil, nil)
	}
	return id, nil
}

// List returns the authenticated user's notes, newest first.
func (h *NotesHandler) List(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	notes, err := h.services.Notes.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, h.toResponse(note))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns a single note.
func (h *NotesHandler) Get(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	note, err := h.services.Notes.Get(c.Request().Context(), id, owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(note))
}

// Create stores a new note for the authenticated user.
func (h *NotesHandler) Create(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}

	req := new(NoteRequest)
	if err := validation.BindAndValidate(c, req); err != nil {
		return err
	}

	note, err := h.services.Notes.Create(c.Request().Context(), owner, req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.toResponse(note))
}

// Update replaces a note's title and body.
func (h *NotesHandler) Update(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	req := new(NoteRequest)
	if err := validation.BindAndValidate(c, req); err != nil {
		return err
	}

	note, err := h.services.Notes.Update(c.Request().Context(), id, owner, req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(note))
}

// Delete removes a note.
func (h *NotesHandler) Delete(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	if err := h.services.Notes.Delete(c.Request().Context(), id, owner); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Attach uploads a file from a multipart form (field name "file") and
// stores it as the note's attachment.
func (h *NotesHandler) Attach(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	id, err := noteID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errs.NewBadRequestError(`Multipart form must contain a "file" field`, true, nil, nil)
	}
	if fileHeader.Size > maxAttachmentSize {
		return errs.NewBadRequestError("Attachment exceeds the 10 MiB limit", true, nil, nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// filepath.Base strips any directory components a client might
	// smuggle into the filename. An empty name degenerates to "." and
	// "..", and both would produce a nonsense object key.
	filename := filepath.Base(fileHeader.Filename)
	if filename == "." || filename == ".." || filename == "/" {
		return errs.NewBadRequestError("Attachment filename must not be empty", true, nil, nil)
	}

	note, err := h.services.Notes.Attach(c.Request().Context(), id, owner, filename, contentType, file)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(note))
}
