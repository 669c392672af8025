//go:build !windows

// Package stderr captures output that native audio libraries (ALSA via
// oto) write directly to file descriptor 2, bypassing Go's os.Stderr,
// and forwards it to the logger.
package stderr

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
)

// Messages receives captured stderr lines. It is closed once capture
// stops and the pipe is drained.
var Messages = make(chan string, 100)

var (
	original  *os.File
	pipeWrite *os.File
	started   bool
)

// Start begins capturing stderr output.
// Must be called early in main(), before the audio device is opened.
// Returns an error if capture cannot be set up, but the program can continue
// without stderr capture (errors will just go to the original stderr).
func Start() error {
	if started {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	// Save original stderr file descriptor
	fd, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	// Redirect stderr (fd 2) to the pipe's write end
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(fd)
		r.Close()
		w.Close()
		return err
	}

	original = os.NewFile(uintptr(fd), "stderr")
	pipeWrite = w
	started = true

	go func() {
		defer close(Messages)
		defer r.Close()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case Messages <- line:
			default:
				// Channel full, drop message to avoid blocking
			}
		}
	}()

	return nil
}

// Original returns the stderr that was in place before Start. Loggers
// must write here while capture is active.
func Original() io.Writer {
	if started {
		return original
	}
	return os.Stderr
}

// Forward logs captured lines at debug level until Messages is closed.
func Forward(logger *slog.Logger) {
	for line := range Messages {
		logger.Debug("native library output", slog.String("line", line))
	}
}

// Stop restores the original stderr. Should be called on program exit.
func Stop() {
	if !started {
		return
	}

	_ = syscall.Dup2(int(original.Fd()), int(os.Stderr.Fd()))
	// Closing the write end ends the reader, which closes Messages.
	pipeWrite.Close()
	started = false
}
