// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules (like required
// fields or length limits) declared in struct tags, and extracts
// failures into field-level errors the client can act on.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to
// validate themselves.
//
// The usual pattern:
//   - declare a request struct with validator tags (`validate:"required,max=200"`)
//   - implement Validate() error running validator.Struct(req)
type Validatable interface {
	Validate() error
}

// validate is the shared validator instance. validator.Validate caches
// struct metadata, so a single instance is both safe and faster.
var validate = validator.New()

// Struct runs tag validation against a payload. Exposed so request
// types can implement Validate() as a one-liner.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the struct from body/params/query.
//  2. payload.Validate() applies validation rules.
//  3. failures become a 400 *errs.HTTPError with field-level errors.
//
// payload must be a pointer for Bind to populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError("Request body could not be parsed", false, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

// extractValidationError converts validator.ValidationErrors into
// user-friendly per-field messages.
func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Not a tag failure: surface as a single generic field error.
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: "request",
			Error: err.Error(),
		})
		return "Validation failed", fieldErrors
	}

	for _, verr := range validationErrors {
		field := strings.ToLower(verr.Field())
		var msg string

		switch verr.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// min means minimum length for strings, minimum value for numbers.
			if verr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", verr.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", verr.Param())
			}

		case "max":
			if verr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", verr.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", verr.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", verr.Param())

		case "email":
			msg = "must be a valid email address"

		case "uuid":
			msg = "must be a valid UUID"

		default:
			if verr.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, verr.Tag(), verr.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, verr.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
