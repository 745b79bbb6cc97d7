// Package logger configures the application's logging.
//
// It uses *zerolog* for structured logging. On the managed platform,
// anything the process writes to stdout/stderr is picked up by the
// platform's log ingestion, which understands JSON lines with
// `severity`, `message` and `time` fields. We rename zerolog's default
// field names so log levels show up correctly in the cloud console
// without any forwarding agent.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// New builds the application's root logger.
//
// Behavior:
//   - debug=true (local development): human-friendly console output on
//     stderr, level set to Debug.
//   - debug=false (deployed): one JSON object per line on stdout, with
//     platform-compatible field names, level set to Info.
//
// Every other logger in the app is derived from this one via With(),
// so the field naming set here applies everywhere.
func New(debug bool) zerolog.Logger {
	// Render stacks attached with errors.WithStack as structured JSON
	// instead of the default fmt verb output.
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	// Field names the platform's log ingestion understands natively:
	//   level   -> severity
	//   message -> message
	//   time    -> time (RFC3339)
	zerolog.LevelFieldName = "severity"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFieldName = "time"
	zerolog.TimeFieldFormat = time.RFC3339

	// The ingestion layer matches severities case-insensitively, but the
	// canonical values are upper-case ("DEBUG", "INFO", "WARNING", ...).
	zerolog.LevelFieldMarshalFunc = marshalSeverity

	return zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}

// marshalSeverity maps zerolog levels onto the platform's severity names.
// The only rename that matters is "warn" -> "WARNING"; everything else is
// just upper-cased.
func marshalSeverity(l zerolog.Level) string {
	switch l {
	case zerolog.DebugLevel:
		return "DEBUG"
	case zerolog.InfoLevel:
		return "INFO"
	case zerolog.WarnLevel:
		return "WARNING"
	case zerolog.ErrorLevel:
		return "ERROR"
	case zerolog.FatalLevel:
		return "CRITICAL"
	case zerolog.PanicLevel:
		return "ALERT"
	default:
		return "DEFAULT"
	}
}

// NewPgxLogger returns a logger dedicated to SQL query tracing.
//
// It writes console output (SQL tracing is only enabled in debug mode,
// where the console writer is in effect anyway) and tags every entry
// with a component field so query logs are easy to filter out.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Str("component", "pgx").Logger()
}

// GetPgxTraceLogLevel converts the app's zerolog level into the integer
// level space used by pgx's tracelog package (tracelog.LogLevel*).
//
// The mapping is intentionally coarse: trace/debug both map to tracelog
// debug (6), and anything at error or above maps to tracelog error (2).
func GetPgxTraceLogLevel(level zerolog.Level) int {
	switch {
	case level <= zerolog.DebugLevel:
		return 6 // tracelog.LogLevelDebug
	case level == zerolog.InfoLevel:
		return 4 // tracelog.LogLevelInfo
	case level == zerolog.WarnLevel:
		return 3 // tracelog.LogLevelWarn
	default:
		return 2 // tracelog.LogLevelError
	}
}
