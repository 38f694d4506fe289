package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitConfiguresGlobalLogger(t *testing.T) {
	t.Cleanup(func() {
		globalLogger = zap.NewNop()
		SetLevel("info")
	})

	if err := Init("debug"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	logger := Logger()
	if logger == nil {
		t.Fatal("expected Logger to return non-nil logger")
	}
	if !logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected logger to enable debug level")
	}
}

func TestSetLevelAdjustsRunningLogger(t *testing.T) {
	t.Cleanup(func() {
		globalLogger = zap.NewNop()
		SetLevel("info")
	})

	if err := Init("info"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if Logger().Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug to be disabled at info level")
	}

	SetLevel("debug")
	if !Logger().Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug to be enabled after SetLevel")
	}

	if got := SetLevel("not-a-level"); got != zapcore.InfoLevel {
		t.Fatalf("expected fallback to info, got %s", got)
	}
	if Level() != zapcore.InfoLevel {
		t.Fatalf("expected info level, got %s", Level())
	}
}

func TestLoggingHelpersEmitEntries(t *testing.T) {
	core, recorded := observer.New(zap.DebugLevel)
	t.Cleanup(func() {
		globalLogger = zap.NewNop()
	})
	globalLogger = zap.New(core)

	Info("info message", zap.String("k", "v"))
	Error("error message")
	Warn("warn message")
	Debug("debug message")

	if recorded.Len() != 4 {
		t.Fatalf("expected 4 log entries, got %d", recorded.Len())
	}

	messages := recorded.All()
	want := []string{"info message", "error message", "warn message", "debug message"}
	for i, entry := range messages {
		if entry.Message != want[i] {
			t.Fatalf("entry %d message = %q, want %q", i, entry.Message, want[i])
		}
	}
	if field := messages[0].ContextMap()["k"]; field != "v" {
		t.Fatalf("expected field \"k\" to equal \"v\", got %v", field)
	}
}

func TestWithModuleAttachesModuleField(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	t.Cleanup(func() {
		globalLogger = zap.NewNop()
	})
	globalLogger = zap.New(core)

	logger := WithModule("catalog")
	logger.Info("module test")

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if module := entries[0].ContextMap()["module"]; module != "catalog" {
		t.Fatalf("expected module field to be \"catalog\", got %v", module)
	}
}

func TestSetBaseLoggerFallsBackToNop(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	t.Cleanup(func() {
		SetBaseLogger(nil)
	})

	SetBaseLogger(zap.New(core))
	Info("captured")
	if recorded.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", recorded.Len())
	}

	SetBaseLogger(nil)
	Info("dropped")
	if recorded.Len() != 1 {
		t.Fatalf("expected nop logger to drop entries, got %d", recorded.Len())
	}
}
