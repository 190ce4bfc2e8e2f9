package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		env   string
		want  zapcore.Level
	}{
		{"debug", "development", zapcore.DebugLevel},
		{"warn", "production", zapcore.WarnLevel},
		{"", "development", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, tt.env)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tt.level, tt.env, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("%q: level %v should be enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("%q: level %v should be disabled", tt.level, tt.want-1)
		}
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New("loud", "development"); err == nil {
		t.Error("expected error for unknown level")
	}
}
