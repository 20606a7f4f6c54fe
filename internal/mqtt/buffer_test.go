package mqtt

import "testing"

func msg(topic string) bufferedMsg {
	return bufferedMsg{topic: topic, payload: []byte("{}")}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	r := newRingBuffer(4)

	r.push(msg("a"))
	r.push(msg("b"))
	r.push(msg("c"))

	if r.len() != 3 {
		t.Fatalf("expected 3 buffered, got %d", r.len())
	}

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 drained, got %d", len(msgs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if msgs[i].topic != want {
			t.Errorf("msg %d: expected topic %q, got %q", i, want, msgs[i].topic)
		}
	}

	if r.len() != 0 {
		t.Errorf("expected empty buffer after drain, got %d", r.len())
	}
	if msgs := r.drainAll(); msgs != nil {
		t.Errorf("expected nil on empty drain, got %v", msgs)
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)

	r.push(msg("a"))
	r.push(msg("b"))
	r.push(msg("c"))
	r.push(msg("d")) // drops "a"
	r.push(msg("e")) // drops "b"

	if r.len() != 3 {
		t.Fatalf("expected buffer capped at 3, got %d", r.len())
	}
	if r.dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", r.dropped)
	}

	msgs := r.drainAll()
	for i, want := range []string{"c", "d", "e"} {
		if msgs[i].topic != want {
			t.Errorf("msg %d: expected topic %q, got %q", i, want, msgs[i].topic)
		}
	}
}

func TestRingBufferDrainResetsDropCount(t *testing.T) {
	r := newRingBuffer(1)
	r.push(msg("a"))
	r.push(msg("b"))

	if r.dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", r.dropped)
	}

	r.drainAll()
	if r.dropped != 0 {
		t.Errorf("expected drop count reset after drain, got %d", r.dropped)
	}

	r.push(msg("c"))
	if r.len() != 1 {
		t.Errorf("buffer should accept messages after drain, got len %d", r.len())
	}
}
