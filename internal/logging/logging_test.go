package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONLoggerRewritesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("file done", "file", "a.mp4", "stage", "done")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	for _, key := range []string{"ts", "level", "msg", "file", "stage"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("missing key %q in %v", key, entry)
		}
	}
	if entry["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", entry["level"])
	}
	if _, ok := entry["source"]; ok {
		t.Fatalf("expected no source at info level")
	}
}

func TestConsoleLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "error", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Error("shown", "stage", "render")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message leaked at error level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "stage=render") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestDebugAddsShortSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("extracting audio")
	if !strings.Contains(buf.String(), "source=logging_test.go:") {
		t.Fatalf("expected short source attribute, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}

func TestLevelFromFlags(t *testing.T) {
	if got := LevelFromFlags(true, true, "warn"); got != "debug" {
		t.Fatalf("verbose should win, got %q", got)
	}
	if got := LevelFromFlags(false, true, "warn"); got != "error" {
		t.Fatalf("quiet should map to error, got %q", got)
	}
	if got := LevelFromFlags(false, false, "warn"); got != "warn" {
		t.Fatalf("expected configured level, got %q", got)
	}
}
