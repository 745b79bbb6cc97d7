package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/arvield/cloudnotes/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestNoteIDParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	want := uuid.New()
	c.SetParamNames("id")
	c.SetParamValues(want.String())

	got, err := noteID(c)
	if err != nil {
		t.Fatalf("noteID() error = %v", err)
	}
	if got != want {
		t.Errorf("noteID() = %v, want %v", got, want)
	}

	c.SetParamValues("not-a-uuid")
	_, err = noteID(c)
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
		t.Errorf("noteID() with garbage = %v, want 400", err)
	}
}

func TestOwnerIDFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	want := uuid.New()
	c.Set(middleware.UserIDKey, want.String())

	got, err := ownerID(c)
	if err != nil {
		t.Fatalf("ownerID() error = %v", err)
	}
	if got != want {
		t.Errorf("ownerID() = %v, want %v", got, want)
	}

	// No identity in the context means the auth middleware did not
	// run or the token subject was garbage; both are 401.
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err = ownerID(c)
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusUnauthorized {
		t.Errorf("ownerID() without identity = %v, want 401", err)
	}
}

func TestAttachRejectsDegenerateFilenames(t *testing.T) {
	h := new(NotesHandler)
	e := echo.New()

	for _, filename := range []string{".", ".."} {
		body := new(bytes.Buffer)
		form := multipart.NewWriter(body)
		part, err := form.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("payload")); err != nil {
			t.Fatal(err)
		}
		if err := form.Close(); err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest(http.MethodPost, "/", body)
		req.Header.Set(echo.HeaderContentType, form.FormDataContentType())
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(middleware.UserIDKey, uuid.New().String())
		c.SetParamNames("id")
		c.SetParamValues(uuid.New().String())

		err = h.Attach(c)
		var httpErr *errs.HTTPError
		if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
			t.Errorf("Attach with filename %q = %v, want 400", filename, err)
		}
	}
}

func TestNoteRequestValidation(t *testing.T) {
	valid := &NoteRequest{Title: "Groceries", Body: "milk, eggs"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	missing := &NoteRequest{Body: "no title"}
	if err := missing.Validate(); err == nil {
		t.Error("request without title accepted")
	}
}

func TestLoginRequestValidation(t *testing.T) {
	valid := &LoginRequest{Username: "alice", Password: "s3cret"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	missing := &LoginRequest{Username: "alice"}
	if err := missing.Validate(); err == nil {
		t.Error("request without password accepted")
	}
}
