package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"salesinsights/internal/config"
)

func TestNewLoggerTo_Formats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})
	logger.Info("loaded", "records", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json handler output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "loaded" {
		t.Errorf("msg = %v, want loaded", entry["msg"])
	}

	buf.Reset()
	logger = NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "text"})
	logger.Info("loaded", "records", 3)
	if !strings.Contains(buf.String(), "msg=loaded") {
		t.Errorf("text handler output = %q", buf.String())
	}
}

func TestNewLoggerTo_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "text"})
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record should be written")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q, want abc", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q", got)
	}
}

func TestStartSpan_Nesting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "export")
	_, child := StartSpan(ctx, "write")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace %q != parent trace %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent = %q, want %q", child.ParentID, parent.SpanID)
	}
	if len(parent.SpanID) != 16 {
		t.Errorf("span id %q should be 16 hex chars", parent.SpanID)
	}

	child.SetError(errors.New("disk full"))
	child.Finish()
	if child.Status != SpanStatusError || child.Duration == nil {
		t.Errorf("finished span = %+v", child)
	}
}
