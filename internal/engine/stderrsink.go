package engine

import (
	"io"
	"sync"
)

// StderrSink is the swappable destination for one engine's stderr
// drain. The drain goroutine runs once per subprocess lifetime
// (started in Start), but spec.md §4.6 wants one stderr file per
// (game, engine); rather than restart the drain at every game
// boundary, the match driver calls SetTarget with a freshly opened
// file before each game and closes the previous one.
type StderrSink struct {
	mu     sync.Mutex
	target io.Writer
	mirror io.Writer // the arbiter's own stderr, nil when Quiet
}

func newStderrSink(mirror io.Writer) *StderrSink {
	return &StderrSink{mirror: mirror}
}

func (s *StderrSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	target, mirror := s.target, s.mirror
	s.mu.Unlock()
	if target != nil {
		_, _ = target.Write(p)
	}
	if mirror != nil {
		_, _ = mirror.Write(p)
	}
	return len(p), nil
}

// SetTarget switches the per-game file target. A nil target disables
// file logging (e.g. LogStderr is false) without affecting mirroring.
func (s *StderrSink) SetTarget(w io.Writer) {
	s.mu.Lock()
	s.target = w
	s.mu.Unlock()
}
