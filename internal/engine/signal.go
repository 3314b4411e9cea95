package engine

import "sync"

// Signal is the dirty flag shared by the collector, which sets it, and the
// trigger, which takes it.
type Signal struct {
	mu    sync.Mutex
	dirty bool
}

func (s *Signal) Mark() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
}

// Take clears the flag and reports whether it was set.
func (s *Signal) Take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty := s.dirty
	s.dirty = false
	return dirty
}

func (s *Signal) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
