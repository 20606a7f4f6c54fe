package gpio

import "time"

var _ Source = (*FakeSource)(nil)

// FakeSource is a test double that delivers scripted edges.
type FakeSource struct {
	ch chan Edge

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSource creates a FakeSource with room for queued edges.
func NewFakeSource() *FakeSource {
	return &FakeSource{ch: make(chan Edge, 64)}
}

// Emit queues an edge with the given timestamp for the consumer.
func (f *FakeSource) Emit(ts time.Duration) {
	f.ch <- Edge{Timestamp: ts}
}

// Finish closes the event channel, signalling that no more edges follow.
func (f *FakeSource) Finish() {
	close(f.ch)
}

// Events returns the scripted edge channel.
func (f *FakeSource) Events() <-chan Edge {
	return f.ch
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
