// Package sqlerr handles database driver errors.
//
// It parses cryptic SQLSTATE codes from the Postgres driver and
// converts them into user-friendly application errors (e.g. turning a
// "foreign key violation" into a 400 with a readable message).
package sqlerr

import (
	"github.com/jackc/pgx/v5/pgconn"
)

// Code classifies the database error categories the application cares
// about. Anything outside these maps to Other.
type Code int

const (
	Other Code = iota
	ForeignKeyViolation
	UniqueViolation
	NotNullViolation
	CheckViolation
)

// Severity mirrors the Postgres severity field.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityError
	SeverityFatal
	SeverityPanic
)

// Error is the application's structured view of a Postgres error.
//
// It keeps the original SQLSTATE (DatabaseCode) and the schema metadata
// Postgres reports (table, column, constraint) so messages and codes
// can be derived from them.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the original driver error for errors.As/Is chains.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// SQLSTATE class 23 holds integrity constraint violations; these four
// are the ones worth distinguishing for clients.
const (
	sqlstateForeignKeyViolation = "23503"
	sqlstateUniqueViolation     = "23505"
	sqlstateNotNullViolation    = "23502"
	sqlstateCheckViolation      = "23514"
)

// MapCode maps a raw SQLSTATE string onto our Code enum.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case sqlstateForeignKeyViolation:
		return ForeignKeyViolation
	case sqlstateUniqueViolation:
		return UniqueViolation
	case sqlstateNotNullViolation:
		return NotNullViolation
	case sqlstateCheckViolation:
		return CheckViolation
	default:
		return Other
	}
}

// MapSeverity maps the Postgres severity string onto our enum.
func MapSeverity(severity string) Severity {
	switch severity {
	case "ERROR":
		return SeverityError
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	default:
		return SeverityUnknown
	}
}

// ConvertPgError converts a raw pgconn.PgError into our structured Error,
// keeping the original around for Unwrap().
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}
