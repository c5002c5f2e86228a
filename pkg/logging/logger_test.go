package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func parseLines(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("log line is not valid JSON: %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLogger_WritesEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("optimization complete", Int("cycle_s", 70), String("direction", "North"))

	entries := parseLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" {
		t.Errorf("level = %q, want INFO", e.Level)
	}
	if e.Message != "optimization complete" {
		t.Errorf("message = %q", e.Message)
	}
	if e.Fields["cycle_s"] != float64(70) {
		t.Errorf("cycle_s field = %v", e.Fields["cycle_s"])
	}
	if e.Fields["direction"] != "North" {
		t.Errorf("direction field = %v", e.Fields["direction"])
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible")
	logger.Error("visible too")

	entries := parseLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Errorf("unexpected levels: %s, %s", entries[0].Level, entries[1].Level)
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, ErrorLevel)

	logger.Info("dropped")
	logger.SetLevel(DebugLevel)
	logger.Debug("kept")

	entries := parseLines(t, &buf)
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Fatalf("expected only the post-SetLevel entry, got %+v", entries)
	}
	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel = %v, want DebugLevel", logger.GetLevel())
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("optimizer"), String("request_id", "abc"))
	child.Info("run", Int("phases", 4))

	entries := parseLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	f := entries[0].Fields
	if f["component"] != "optimizer" || f["request_id"] != "abc" || f["phases"] != float64(4) {
		t.Errorf("child fields not merged: %v", f)
	}

	// The parent must not inherit the child's fields.
	buf.Reset()
	logger.Info("parent")
	entries = parseLines(t, &buf)
	if _, ok := entries[0].Fields["component"]; ok {
		t.Error("parent logger leaked child fields")
	}
}

func TestJSONLogger_CallFieldsOverridePreset(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(String("stage", "preset"))

	logger.Info("msg", String("stage", "call"))

	entries := parseLines(t, &buf)
	if entries[0].Fields["stage"] != "call" {
		t.Errorf("call-site field should win, got %v", entries[0].Fields["stage"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"WARNING": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	timer := StartTimer(logger, "optimize", String("direction", "East"))
	time.Sleep(time.Millisecond)
	timer.End()

	entries := parseLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, ok := entries[0].Fields["latency_ms"]; !ok {
		t.Errorf("timed entry missing latency field: %v", entries[0].Fields)
	}
	if entries[0].Fields["direction"] != "East" {
		t.Errorf("timed entry lost fields: %v", entries[0].Fields)
	}
}
