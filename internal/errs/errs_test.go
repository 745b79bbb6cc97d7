package errs

import (
	"errors"
	"net/http"
	"testing"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bad Request", "BAD_REQUEST"},
		{"Internal Server Error", "INTERNAL_SERVER_ERROR"},
		{"Conflict", "CONFLICT"},
	}
	for _, tt := range tests {
		if got := MakeUpperCaseWithUnderscores(tt.in); got != tt.want {
			t.Errorf("MakeUpperCaseWithUnderscores(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConstructorDefaults(t *testing.T) {
	err := NewBadRequestError("bad input", true, nil, nil)
	if err.Code != "BAD_REQUEST" || err.Status != http.StatusBadRequest || !err.Override {
		t.Errorf("NewBadRequestError() = %+v", err)
	}

	code := "NOTE_NOT_FOUND"
	nf := NewNotFoundError("gone", false, &code)
	if nf.Code != "NOTE_NOT_FOUND" || nf.Status != http.StatusNotFound {
		t.Errorf("NewNotFoundError() = %+v", nf)
	}

	internal := NewInternalServerError()
	if internal.Message != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("internal error message leaks: %q", internal.Message)
	}
}

func TestHTTPErrorIsMatchesByType(t *testing.T) {
	err := NewUnauthorizedError("nope", false)
	if !errors.Is(error(err), &HTTPError{}) {
		t.Error("errors.Is did not match two HTTPError values")
	}
}

func TestWithMessage(t *testing.T) {
	base := NewForbiddenError("original", false)
	clone := base.WithMessage("replaced")

	if clone.Message != "replaced" || clone.Status != http.StatusForbidden {
		t.Errorf("WithMessage() = %+v", clone)
	}
	if base.Message != "original" {
		t.Error("WithMessage mutated the receiver")
	}
}
