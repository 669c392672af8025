//go:build windows

// Package stderr provides a no-op implementation for Windows.
// Windows audio backends don't produce the same stderr noise as ALSA.
package stderr

import (
	"io"
	"log/slog"
	"os"
)

// Messages is never written on Windows.
var Messages = make(chan string)

// Start is a no-op on Windows.
func Start() error {
	return nil
}

// Original returns os.Stderr.
func Original() io.Writer {
	return os.Stderr
}

// Forward returns immediately on Windows.
func Forward(_ *slog.Logger) {}

// Stop is a no-op on Windows.
func Stop() {}
