package logging_test

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storyteller/internal/config"
	"storyteller/internal/logging"
)

func TestNewJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", OutputPaths: []string{out}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}
	logger.Info("json message", zap.String("k", "v"))
	logger.Sync() //nolint:errcheck
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, err := logging.New(logging.Options{Format: "console", Level: "invalid"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be disabled at info level")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be enabled")
	}
}

func TestNewFromConfig(t *testing.T) {
	logger, err := logging.NewFromConfig(config.LoggingConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	ctx := logging.WithRequestID(context.Background(), "req-xyz")
	logging.WithContext(ctx, logger).Info("contextual log")
	logging.WithContext(context.Background(), logger).Info("plain log")

	records := observed.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(records))
	}
	if got := records[0].ContextMap()[logging.FieldRequestID]; got != "req-xyz" {
		t.Errorf("request_id = %v, want req-xyz", got)
	}
	if _, ok := records[1].ContextMap()[logging.FieldRequestID]; ok {
		t.Error("plain log should not carry request_id")
	}
}
