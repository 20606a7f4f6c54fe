package capture

import "sync"

// State is the shared decode state: the single piece of mutable data touched
// by both the edge producer and the polling decoder. Critical sections stay
// bounded: an array copy and flag toggles, no floating point.
type State struct {
	mu       sync.Mutex
	win      Window
	accepted uint64
	rejected uint64
}

// NewState creates an empty decode state with all window slots zero.
func NewState() *State {
	return &State{}
}

// Push records an accepted corrected period and marks the window dirty.
func (s *State) Push(period uint32) {
	s.mu.Lock()
	s.win.Push(period)
	s.accepted++
	s.mu.Unlock()
}

// Reject counts a sample dropped before it reached the window.
func (s *State) Reject() {
	s.mu.Lock()
	s.rejected++
	s.mu.Unlock()
}

// SnapshotIfDirty returns the ordered window and its start slot if at least
// one push happened since the previous call, clearing the dirty flag.
// ok is false when there is nothing new to examine.
func (s *State) SnapshotIfDirty() (window [Size]uint32, start int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.win.dirty {
		return window, 0, false
	}
	s.win.dirty = false
	window, start = s.win.Snapshot()
	return window, start, true
}

// ClearRegion zeroes count window slots starting at start, wrapping around.
func (s *State) ClearRegion(start, count int) {
	s.mu.Lock()
	s.win.ClearRegion(start, count)
	s.mu.Unlock()
}

// SampleCounts returns how many samples were accepted into the window and
// how many were dropped since startup.
func (s *State) SampleCounts() (accepted, rejected uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted, s.rejected
}
