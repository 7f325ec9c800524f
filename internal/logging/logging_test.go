package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		want          zapcore.Level
		wantErr       bool
	}{
		{"debug", "console", zapcore.DebugLevel, false},
		{"info", "json", zapcore.InfoLevel, false},
		{"warn", "", zapcore.WarnLevel, false},
		{"loud", "console", 0, true},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s/%s: unexpected error %v", tt.level, tt.format, err)
			continue
		}
		if err != nil {
			continue
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("%s: expected level %v enabled", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("%s: expected level below %v disabled", tt.level, tt.want)
		}
	}
}
