package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLoggerDebugLevel(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	InitLogger(true, "")
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level not enabled")
	}

	InitLogger(false, "")
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be disabled by default")
	}
}

func TestInitLoggerFileOutput(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	logFile := filepath.Join(t.TempDir(), "perfbench.log")
	InitLogger(false, logFile)

	slog.Info("file handler check", "key", "value")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "file handler check") {
		t.Errorf("log message missing from file: %s", data)
	}
}

func TestMultiHandlerFanOut(t *testing.T) {
	var a, b strings.Builder
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}}

	logger := slog.New(h)
	logger.Info("fan out")

	if !strings.Contains(a.String(), "fan out") || !strings.Contains(b.String(), "fan out") {
		t.Error("record not delivered to all handlers")
	}
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var out strings.Builder
	h := &multiHandler{handlers: []slog.Handler{slog.NewTextHandler(&out, nil)}}

	logger := slog.New(h).With("component", "history")
	logger.Info("attr check")

	if !strings.Contains(out.String(), "component=history") {
		t.Errorf("attrs not propagated: %s", out.String())
	}
}
