package capture

import "testing"

func TestPushAndSnapshotWarmup(t *testing.T) {
	var w Window

	w.Push(360)
	w.Push(1080)
	w.Push(360)
	w.Push(1080)

	window, start := w.Snapshot()
	if start != 0 {
		t.Errorf("expected window start 0 during warmup, got %d", start)
	}
	want := [Size]uint32{360, 1080, 360, 1080, 0, 0, 0, 0}
	if window != want {
		t.Errorf("expected window %v, got %v", want, window)
	}
}

func TestSnapshotEmptyWindow(t *testing.T) {
	var w Window

	window, start := w.Snapshot()
	if start != 0 {
		t.Errorf("expected start 0 for empty window, got %d", start)
	}
	if window != [Size]uint32{} {
		t.Errorf("expected all-zero window, got %v", window)
	}
}

func TestRingCorrectness(t *testing.T) {
	// For any sequence of Size or more pushes, the snapshot must hold
	// exactly the last Size values in chronological order, and the start
	// must be the storage index of the oldest of them.
	var w Window
	for i := uint32(1); i <= 20; i++ {
		w.Push(i * 100)

		if i < Size {
			continue
		}
		window, start := w.Snapshot()
		oldest := i - Size + 1
		for j := 0; j < Size; j++ {
			want := (oldest + uint32(j)) * 100
			if window[j] != want {
				t.Fatalf("after %d pushes: window[%d] = %d, want %d", i, j, window[j], want)
			}
		}
		if wantStart := int(i) % Size; start != wantStart {
			t.Fatalf("after %d pushes: start = %d, want %d", i, start, wantStart)
		}
	}
}

func TestSnapshotNeverReordersWrittenAfterUnwritten(t *testing.T) {
	var w Window
	w.Push(500)
	w.Push(600)

	window, _ := w.Snapshot()
	if window[0] != 500 || window[1] != 600 {
		t.Errorf("written values must lead the window, got %v", window)
	}
	for i := 2; i < Size; i++ {
		if window[i] != 0 {
			t.Errorf("position %d should be zero before warmup, got %d", i, window[i])
		}
	}
}

func TestClearRegion(t *testing.T) {
	var w Window
	for i := uint32(1); i <= Size; i++ {
		w.Push(i * 100)
	}

	w.ClearRegion(2, 3)

	for i, v := range w.buf {
		cleared := i >= 2 && i < 5
		if cleared && v != 0 {
			t.Errorf("slot %d should be cleared, got %d", i, v)
		}
		if !cleared && v == 0 {
			t.Errorf("slot %d should be untouched, got zero", i)
		}
	}
}

func TestClearRegionWrapsAround(t *testing.T) {
	var w Window
	for i := uint32(1); i <= Size; i++ {
		w.Push(i * 100)
	}

	w.ClearRegion(6, 4) // slots 6, 7, 0, 1

	for i, v := range w.buf {
		cleared := i >= 6 || i < 2
		if cleared && v != 0 {
			t.Errorf("slot %d should be cleared, got %d", i, v)
		}
		if !cleared && v == 0 {
			t.Errorf("slot %d should be untouched, got zero", i)
		}
	}
}

func TestClearRegionIdempotent(t *testing.T) {
	var w Window
	for i := uint32(1); i <= Size; i++ {
		w.Push(i * 100)
	}

	w.ClearRegion(3, 4)
	first := w.buf

	w.ClearRegion(3, 4)
	if w.buf != first {
		t.Errorf("repeated clear changed buffer: %v vs %v", first, w.buf)
	}
}

func TestSnapshotAfterClearSkipsClearedSlots(t *testing.T) {
	var w Window
	for i := uint32(1); i <= Size; i++ {
		w.Push(i * 100)
	}
	// Oldest samples live at the cursor; clear the four oldest.
	w.ClearRegion(0, 4)

	window, start := w.Snapshot()
	if start != 4 {
		t.Errorf("expected start 4 (oldest surviving sample), got %d", start)
	}
	want := [Size]uint32{500, 600, 700, 800, 0, 0, 0, 0}
	if window != want {
		t.Errorf("expected window %v, got %v", want, window)
	}
}

func TestPushOverwritesOldest(t *testing.T) {
	var w Window
	for i := uint32(1); i <= Size+2; i++ {
		w.Push(i * 100)
	}

	window, start := w.Snapshot()
	if window[0] != 300 {
		t.Errorf("expected oldest surviving value 300, got %d", window[0])
	}
	if window[Size-1] != 1000 {
		t.Errorf("expected newest value 1000, got %d", window[Size-1])
	}
	if start != 2 {
		t.Errorf("expected start 2, got %d", start)
	}
}
