package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestMarshalSeverity(t *testing.T) {
	tests := []struct {
		level zerolog.Level
		want  string
	}{
		{zerolog.DebugLevel, "DEBUG"},
		{zerolog.InfoLevel, "INFO"},
		{zerolog.WarnLevel, "WARNING"},
		{zerolog.ErrorLevel, "ERROR"},
		{zerolog.FatalLevel, "CRITICAL"},
		{zerolog.PanicLevel, "ALERT"},
		{zerolog.TraceLevel, "DEFAULT"},
	}
	for _, tt := range tests {
		if got := marshalSeverity(tt.level); got != tt.want {
			t.Errorf("marshalSeverity(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	tests := []struct {
		level zerolog.Level
		want  int
	}{
		{zerolog.TraceLevel, 6},
		{zerolog.DebugLevel, 6},
		{zerolog.InfoLevel, 4},
		{zerolog.WarnLevel, 3},
		{zerolog.ErrorLevel, 2},
		{zerolog.FatalLevel, 2},
	}
	for _, tt := range tests {
		if got := GetPgxTraceLogLevel(tt.level); got != tt.want {
			t.Errorf("GetPgxTraceLogLevel(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}
