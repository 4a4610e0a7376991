package duckclient

import (
	"log/slog"
	"testing"
)

func TestLogger_Interface(t *testing.T) {
	var _ Logger = slog.Default()
}

func TestDefaultLogger(t *testing.T) {
	logger := defaultLogger()

	if logger != slog.Default() {
		t.Error("defaultLogger did not return slog.Default()")
	}
}

// mockLogger records the last call.
type mockLogger struct {
	level    string
	lastMsg  string
	lastArgs []any
}

func (l *mockLogger) record(level, msg string, args []any) {
	l.level, l.lastMsg, l.lastArgs = level, msg, args
}

func (l *mockLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *mockLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *mockLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *mockLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func TestWithFields(t *testing.T) {
	mock := &mockLogger{}
	logger := withFields(mock, "session", "abc")

	logger.Warn("frame dropped", "type", TypeDuck)

	if mock.level != "warn" || mock.lastMsg != "frame dropped" {
		t.Errorf("got %s %q", mock.level, mock.lastMsg)
	}
	want := []any{"session", "abc", "type", TypeDuck}
	if len(mock.lastArgs) != len(want) {
		t.Fatalf("args = %v, want %v", mock.lastArgs, want)
	}
	for i := range want {
		if mock.lastArgs[i] != want[i] {
			t.Errorf("arg %d = %v, want %v", i, mock.lastArgs[i], want[i])
		}
	}
}

func TestWithFields_Nested(t *testing.T) {
	mock := &mockLogger{}
	logger := withFields(withFields(mock, "a", 1), "b", 2)

	logger.Info("hello")

	if len(mock.lastArgs) != 4 || mock.lastArgs[0] != "a" || mock.lastArgs[2] != "b" {
		t.Errorf("args = %v", mock.lastArgs)
	}
	if _, ok := logger.(*fieldLogger).next.(*mockLogger); !ok {
		t.Error("nested field loggers should flatten")
	}
}
