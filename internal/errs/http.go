// Package errs defines the error types the HTTP layer speaks.
//
// Every failure that reaches a client is funneled into an HTTPError so
// responses have one consistent JSON shape: a machine-readable code, a
// human-readable message, the HTTP status, and optionally a list of
// field-level validation errors.
package errs

import "strings"

// FieldError represents a field-level validation error, typically
// produced from validator tag failures on a request payload.
//
// Example: { "field": "username", "error": "This field is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the wire shape of every error response.
//
// Fields:
//   - Code: stable machine-readable code (e.g. "NOT_FOUND", "NOTE_ALREADY_EXISTS")
//   - Message: human-readable message, safe to show to users
//   - Status: HTTP status to respond with
//   - Override: whether downstream layers may replace Message with their own
//   - Errors: per-field validation errors, when applicable
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// Error satisfies the built-in error interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is lets errors.Is treat any two *HTTPError values as matching by type.
// It deliberately does not compare Code or Status; callers who need that
// switch on the fields directly.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of the error with only Message replaced.
// Useful when a shared error template needs a situational message.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// MakeUpperCaseWithUnderscores turns HTTP status text into a stable code:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
