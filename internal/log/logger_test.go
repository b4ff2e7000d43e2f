package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentBudget, Output: &buf})

	logger.Info("hello", FieldHousehold, "casa")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if rec[FieldComponent] != ComponentBudget || rec[FieldHousehold] != "casa" {
		t.Errorf("record = %v", rec)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}))
	ctx := context.Background()

	sl.LogDataQuality(ctx, "casa", "month:2025-03", "missing_recurrence", "food", "treated as monthly")
	sl.LogError(ctx, "boom", errors.New("disk full"), ComponentStorage, OpUpdate, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"error_type":"data_quality"`) || !strings.Contains(lines[0], `"level":"WARN"`) {
		t.Errorf("data quality line = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"error":"disk full"`) || !strings.Contains(lines[1], `"component":"storage"`) {
		t.Errorf("error line = %s", lines[1])
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentHTTP, Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"request_id":"req-1"`) {
		t.Errorf("log line = %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("FromContext() = %+v", l)
	}
}
