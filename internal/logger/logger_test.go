package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLevel(tt.level); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestInitFormats(t *testing.T) {
	// Must not panic for either format and must leave a usable logger behind
	Init("debug", "json")
	Info("json logger up")

	Init("info", "text")
	Info("text logger up")
}

func TestWithContext(t *testing.T) {
	Init("error", "text")
	ctx := context.WithValue(context.Background(), "request_id", "req-123") //nolint:staticcheck // string key matches middleware
	l := WithContext(ctx)
	if l == nil {
		t.Fatal("Expected logger, got nil")
	}
	l.Error("request-scoped entry")
}
