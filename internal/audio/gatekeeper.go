package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"
)

// MaxConcurrentSounds is the process-wide ceiling on sounds playing at
// the same time. Requests beyond it are dropped.
const MaxConcurrentSounds = 4

// Kind selects how a Request's target is interpreted.
type Kind int

const (
	// ThemeLookup resolves Target as a sound theme name.
	ThemeLookup Kind = iota
	// DirectPath treats Target as a file path.
	DirectPath
)

// Request asks for one sound to be played.
type Request struct {
	Kind   Kind
	Target string
}

// Theme returns a request for the named theme sound.
func Theme(name string) Request {
	return Request{Kind: ThemeLookup, Target: name}
}

// File returns a request for the sound file at path.
func File(path string) Request {
	return Request{Kind: DirectPath, Target: path}
}

func (r Request) String() string {
	if r.Kind == ThemeLookup {
		return "theme:" + r.Target
	}
	return "file:" + r.Target
}

// Player plays a resolved sound file to completion.
type Player interface {
	Play(path string) error
}

// Gatekeeper validates sound requests and plays admitted ones on
// background workers, at most MaxConcurrentSounds at a time.
type Gatekeeper struct {
	player Player
	env    Env
	logger *slog.Logger

	slots  *semaphore.Weighted
	active atomic.Int64
	wg     sync.WaitGroup
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithPlayer sets the output used by workers.
func WithPlayer(p Player) Option {
	return func(g *Gatekeeper) { g.player = p }
}

// WithEnv sets the environment lookup used to compute sound roots.
func WithEnv(env Env) Option {
	return func(g *Gatekeeper) { g.env = env }
}

// WithLogger sets the logger for worker outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gatekeeper) { g.logger = l }
}

// NewGatekeeper creates a Gatekeeper. Without options it plays through
// the system speaker and reads the process environment.
func NewGatekeeper(opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		env:    DefaultEnv(),
		logger: slog.Default(),
		slots:  semaphore.NewWeighted(MaxConcurrentSounds),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.player == nil {
		g.player = NewSpeakerPlayer(0)
	}
	return g
}

// RequestPlayback validates req and, if a slot is free, starts playing it
// in the background. It returns once the request is admitted or dropped;
// a dropped request is not an error. Errors only report why req could not
// be resolved to an allowed file.
func (g *Gatekeeper) RequestPlayback(req Request) error {
	path, size, err := g.Resolve(req)
	if err != nil {
		return err
	}
	release, ok := g.acquire()
	if !ok {
		g.logger.Debug("sound dropped, too many playing",
			"request", req.String(), "limit", MaxConcurrentSounds)
		return nil
	}
	g.wg.Add(1)
	go g.play(path, size, release)
	return nil
}

// PlaySoundName requests the theme sound name.
func (g *Gatekeeper) PlaySoundName(name string) error {
	return g.RequestPlayback(Theme(name))
}

// PlaySoundFile requests the sound file at path.
func (g *Gatekeeper) PlaySoundFile(path string) error {
	return g.RequestPlayback(File(path))
}

// Resolve maps req to an absolute file path inside the sound roots and
// returns the file size. No slot is taken.
func (g *Gatekeeper) Resolve(req Request) (string, int64, error) {
	target := req.Target
	if req.Kind == ThemeLookup {
		found, err := FindThemeSound(g.env, req.Target)
		if err != nil {
			return "", 0, err
		}
		target = found
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrPathNotAllowed, target)
	}
	roots := SoundRoots(g.env)
	if !confined(abs, roots) {
		return "", 0, fmt.Errorf("%w: %s", ErrPathNotAllowed, abs)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", 0, fmt.Errorf("%w: %s", ErrFileNotFound, abs)
	case err != nil:
		return "", 0, fmt.Errorf("%w: %s: %v", ErrIO, abs, err)
	case info.IsDir():
		return "", 0, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, abs)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrIO, abs, err)
	}
	if !confined(resolved, realRoots(roots)) {
		return "", 0, fmt.Errorf("%w: %s resolves to %s", ErrPathNotAllowed, abs, resolved)
	}
	return resolved, info.Size(), nil
}

// acquire takes a slot if one is free. The returned release is safe to
// call more than once.
func (g *Gatekeeper) acquire() (func(), bool) {
	if !g.slots.TryAcquire(1) {
		return nil, false
	}
	g.active.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			g.active.Add(-1)
			g.slots.Release(1)
		})
	}, true
}

func (g *Gatekeeper) play(path string, size int64, release func()) {
	defer g.wg.Done()
	defer release()
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("sound worker panicked", "path", path, "panic", r)
		}
	}()

	g.logger.Debug("playing sound", "path", path, "size", humanize.Bytes(uint64(size))) //nolint:gosec // size from Stat
	if err := g.player.Play(path); err != nil {
		g.logger.Warn("sound playback failed", "path", path, "error", err)
	}
}

// Active reports the number of sounds currently playing.
func (g *Gatekeeper) Active() int {
	return int(g.active.Load())
}

// Wait blocks until every admitted sound has finished.
func (g *Gatekeeper) Wait() {
	g.wg.Wait()
}
