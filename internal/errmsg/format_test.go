//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errPathNotAllowed = errors.New("sound path not allowed")

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpSoundPlay,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpSoundPlay,
			err:      fmt.Errorf("%w: /etc/passwd", errPathNotAllowed),
			expected: "Failed to play sound: sound path not allowed: /etc/passwd",
		},
		{
			name:     "config operation",
			op:       OpConfigLoad,
			err:      errors.New("log_level: must be a valid value"),
			expected: "Failed to load configuration: log_level: must be a valid value",
		},
		{
			name:     "bus operation",
			op:       OpBusConnect,
			err:      errors.New("no such file or directory"),
			expected: "Failed to connect to session bus: no such file or directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.op, tt.err))
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpConfigLoad,
			context:  "config.toml",
			err:      nil,
			expected: "",
		},
		{
			name:     "with context",
			op:       OpConfigLoad,
			context:  "/home/u/.config/notifyd/config.toml",
			err:      errors.New("permission denied"),
			expected: "Failed to load configuration '/home/u/.config/notifyd/config.toml': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpSoundPlay,
			context:  "",
			err:      errors.New("sound not found in theme"),
			expected: "Failed to play sound: sound not found in theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatWith(tt.op, tt.context, tt.err))
		})
	}
}
