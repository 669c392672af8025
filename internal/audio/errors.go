// Package audio resolves notification sounds and plays them under a
// bounded concurrency ceiling.
package audio

import "errors"

// Sentinel errors returned by the gatekeeper. Callers match them with
// errors.Is; the wrapped message carries the offending path or name.
var (
	ErrNoAudioDevice  = errors.New("no audio output device")
	ErrFileNotFound   = errors.New("sound file not found")
	ErrSoundNotFound  = errors.New("sound not found in theme")
	ErrPathNotAllowed = errors.New("sound path not allowed")
	ErrDecode         = errors.New("decode error")
	ErrPlayback       = errors.New("playback error")
	ErrIO             = errors.New("io error")
)
