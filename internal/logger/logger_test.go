package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		debug     bool
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "text logger info level",
			config: Config{Level: "info", Format: "text", Output: "stdout"},
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
				assert.Contains(t, output, `msg="test message"`)
			},
		},
		{
			name:   "json logger debug level",
			config: Config{Level: "debug", Format: "json", Output: "stdout"},
			debug:  true,
			checkFunc: func(t *testing.T, output string) {
				var entry map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &entry))
				assert.Equal(t, "DEBUG", entry["level"])
				assert.Equal(t, "test message", entry["msg"])
			},
		},
		{
			name:   "debug is filtered at warn level",
			config: Config{Level: "warn", Format: "text"},
			debug:  true,
			checkFunc: func(t *testing.T, output string) {
				assert.Empty(t, output)
			},
		},
		{
			name:   "unknown level falls back to info",
			config: Config{Level: "loud", Format: "text"},
			checkFunc: func(t *testing.T, output string) {
				assert.Contains(t, output, "level=INFO")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(tt.config, &buf)
			if tt.debug {
				l.Debug("test message")
			} else {
				l.Info("test message")
			}
			tt.checkFunc(t, buf.String())
		})
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := WithComponent(NewLogger(Config{Level: "info", Format: "json"}, &buf), "fixer")
	l.Info("published")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fixer", entry["component"])
}
