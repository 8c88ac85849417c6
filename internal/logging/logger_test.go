package logging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trisetra/internal/config"
	"trisetra/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestConsoleFormatIncludesComponentAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := New(Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	NewComponentLogger(logger, "workorder").Info("status fetched", String("status", "completed"), TaskID(42))
	logger.Debug("hidden")

	out := readLog(t, path)
	if !strings.Contains(out, "INFO workorder: status fetched") {
		t.Fatalf("expected component prefix, got %q", out)
	}
	if !strings.Contains(out, "status=completed") || !strings.Contains(out, "task_id=42") {
		t.Fatalf("expected fields, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
}

func TestConsoleFormatQuotesValuesWithSpaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := New(Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("transition", String("help_text", "needs more views"))

	if out := readLog(t, path); !strings.Contains(out, `help_text="needs more views"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
}

func TestJSONFormatUsesStableKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.log")
	logger, err := New(Options{Level: "warn", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	WarnWithContext(logger, "mesh ignored", "preview_mesh_duplicate", String("url", "b.ply"))

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", FieldEventType, FieldErrorHint, FieldImpact} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("missing key %q in %v", key, entry)
		}
	}
	if entry["level"] != "warn" {
		t.Fatalf("level = %v", entry["level"])
	}
	if entry[FieldEventType] != "preview_mesh_duplicate" {
		t.Fatalf("event_type = %v", entry[FieldEventType])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestErrorWithContextKeepsCallerHint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.log")
	logger, err := New(Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ErrorWithContext(logger, "update failed", "workorder_update_failed",
		String(FieldErrorHint, "retry later"), Error(errors.New("boom")))

	out := readLog(t, path)
	if !strings.Contains(out, `"error_hint":"retry later"`) {
		t.Fatalf("expected caller hint preserved, got %q", out)
	}
	if strings.Contains(out, "check logs for details") {
		t.Fatalf("default hint should not be injected: %q", out)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.log")
	logger, err := New(Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	WarnWithContext(logger, "listing failed", "previews_list_failed",
		String(FieldImpact, "gallery shows a placeholder"))

	out := readLog(t, path)
	for _, want := range []string{
		`"event_type":"previews_list_failed"`,
		`"error_hint":"check logs for details"`,
		`"impact":"gallery shows a placeholder"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
	if strings.Contains(out, "operation completed with warnings") {
		t.Fatalf("caller impact should win: %q", out)
	}
}

func TestWithContextAddsIdentifiers(t *testing.T) {
	ctx := services.WithTaskID(context.Background(), 7)
	ctx = services.WithSessionID(ctx, "s-1")
	ctx = services.WithRequestID(ctx, "r-1")

	fields := ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	keys := map[string]slog.Value{}
	for _, f := range fields {
		keys[f.Key] = f.Value
	}
	if keys[FieldTaskID].Int64() != 7 {
		t.Fatalf("task_id = %v", keys[FieldTaskID])
	}
	if keys[FieldSessionID].String() != "s-1" || keys[FieldCorrelationID].String() != "r-1" {
		t.Fatalf("unexpected fields %v", keys)
	}

	if got := WithContext(context.Background(), nil); got == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello")

	out := readLog(t, filepath.Join(cfg.Paths.LogDir, "trisetra.log"))
	if !strings.Contains(out, `"msg":"hello"`) {
		t.Fatalf("expected log line, got %q", out)
	}
}
