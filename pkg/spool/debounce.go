package spool

import (
	"sync"
	"time"
)

// settler delays per-file callbacks until a quiet period has passed, so
// files still being copied into the spool are not analyzed mid-write.
// Every event for a path resets that path's timer; the callback fires
// only after the path has been quiet for the full interval.
type settler struct {
	interval time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// newSettler creates a settler with the given quiet interval.
func newSettler(interval time.Duration) *settler {
	return &settler{
		interval: interval,
		timers:   make(map[string]*time.Timer),
	}
}

// Touch marks activity on a path. The callback fires in its own goroutine
// once the path stays quiet for the settle interval; further touches
// before that push the deadline out.
func (s *settler) Touch(path string, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if timer, ok := s.timers[path]; ok {
		timer.Stop()
	}

	s.timers[path] = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		delete(s.timers, path)
		s.mu.Unlock()

		fire()
	})
}

// Cancel drops any pending callback for a path. Used when the file is
// removed or renamed away before it settles.
func (s *settler) Cancel(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[path]; ok {
		timer.Stop()
		delete(s.timers, path)
	}
}

// Pending returns how many paths are waiting to settle.
func (s *settler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending callback. The settler accepts no touches
// afterwards.
func (s *settler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for path, timer := range s.timers {
		timer.Stop()
		delete(s.timers, path)
	}
}
