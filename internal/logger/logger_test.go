package logger

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"debug", "Info", "warn", "warning", "error"} {
		if !ValidLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	for _, level := range []string{"", "trace", "verbose"} {
		if ValidLevel(level) {
			t.Errorf("expected %q to be invalid", level)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", false, &buf)
	t.Cleanup(func() { InitWithWriter("info", false, io.Discard) })

	log := WithComponent("engine")
	log.Info().Msg("filtered")
	log.Warn().Str("display", "DP-1").Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "engine" || entry["message"] != "kept" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %v", entry)
	}
}
