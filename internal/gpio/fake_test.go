package gpio

import (
	"testing"
	"time"
)

func TestFakeSourceDeliversEdges(t *testing.T) {
	f := NewFakeSource()
	f.Emit(1 * time.Millisecond)
	f.Emit(2 * time.Millisecond)
	f.Finish()

	var got []time.Duration
	for e := range f.Events() {
		got = append(got, e.Timestamp)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(got))
	}
	if got[0] != 1*time.Millisecond || got[1] != 2*time.Millisecond {
		t.Errorf("unexpected timestamps %v", got)
	}
}

func TestFakeSourceClose(t *testing.T) {
	f := NewFakeSource()
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !f.Closed {
		t.Error("expected Closed after Close")
	}
}
