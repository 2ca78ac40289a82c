package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", log.GetLevel())
	}
}

func TestNewWithLevel(t *testing.T) {
	log := NewWithLevel("warn")
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFromOptions_Formats(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantJSON bool
	}{
		{name: "json", format: "json", wantJSON: true},
		{name: "json upper", format: "JSON", wantJSON: true},
		{name: "console", format: "console", wantJSON: false},
		{name: "default", format: "", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewFromOptions(Options{Format: tt.format, Out: buf})
			log.Info().Msg("receipt processed")

			out := buf.String()
			if !strings.Contains(out, "receipt processed") {
				t.Fatalf("output missing message: %q", out)
			}
			if got := json.Valid(bytes.TrimSpace(buf.Bytes())); got != tt.wantJSON {
				t.Errorf("json.Valid = %v, want %v for %q", got, tt.wantJSON, out)
			}
		})
	}
}

func TestNewFromOptions_LevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewFromOptions(Options{Level: "error", Format: FormatJSON, Out: buf})

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}
	log.Error().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())

	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected default logger to be enabled")
	}
}

func TestWithReceipt(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	ctx, log := WithReceipt(ctx, "run-42", "gs://bucket/r1.jpg")
	log.Info().Msg("direct")
	fromCtx := FromContext(ctx)
	fromCtx.Info().Msg("via context")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for _, line := range lines {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		if entry["run_id"] != "run-42" || entry["source"] != "gs://bucket/r1.jpg" {
			t.Errorf("missing receipt fields in %v", entry)
		}
	}
}
