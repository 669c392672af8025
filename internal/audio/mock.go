package audio

import "sync"

// Mock is a test double for Player. Play blocks until Release is called
// when the mock was created with blocking enabled.
type Mock struct {
	mu        sync.Mutex
	calls     []string
	playing   int
	maxActive int
	playErr   error
	panicMsg  string

	block   bool
	release chan struct{}
	started chan string
}

// NewMock creates a non-blocking mock player.
func NewMock() *Mock {
	return &Mock{
		release: make(chan struct{}),
		started: make(chan string, 64),
	}
}

// NewBlockingMock creates a mock whose Play waits for Release.
func NewBlockingMock() *Mock {
	m := NewMock()
	m.block = true
	return m
}

// SetError makes subsequent Play calls fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	m.playErr = err
	m.mu.Unlock()
}

// SetPanic makes subsequent Play calls panic with msg.
func (m *Mock) SetPanic(msg string) {
	m.mu.Lock()
	m.panicMsg = msg
	m.mu.Unlock()
}

func (m *Mock) Play(path string) error {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.playing++
	m.maxActive = max(m.maxActive, m.playing)
	err, panicMsg, block := m.playErr, m.panicMsg, m.block
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.playing--
		m.mu.Unlock()
	}()

	select {
	case m.started <- path:
	default:
	}
	if panicMsg != "" {
		panic(panicMsg)
	}
	if block {
		<-m.release
	}
	return err
}

// Started receives the path of each Play call as it begins.
func (m *Mock) Started() <-chan string {
	return m.started
}

// Release unblocks every pending and future Play call.
func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.release:
	default:
		close(m.release)
	}
}

// Calls returns the paths passed to Play, in call order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// MaxActive returns the highest number of simultaneous Play calls seen.
func (m *Mock) MaxActive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}
