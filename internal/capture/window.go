// Package capture implements the measurement side of the decoder: overflow
// correction of raw timer captures, the plausibility filter, and the
// fixed-capacity window of corrected periods shared between the edge
// producer and the polling decoder.
package capture

// Size is the number of period slots in the capture window.
const Size = 8

// Window is a fixed-capacity circular buffer of corrected periods.
// A zero slot means "not written since the last clear"; zero is never a
// valid corrected period. Not safe for concurrent use — callers go through
// State, which serializes access.
type Window struct {
	buf       [Size]uint32
	nextIndex int
	dirty     bool
}

// Push writes a corrected period at the cursor and advances it, wrapping
// around. The oldest sample is overwritten when the buffer is full.
func (w *Window) Push(period uint32) {
	w.buf[w.nextIndex] = period
	w.nextIndex = (w.nextIndex + 1) % Size
	w.dirty = true
}

// Snapshot returns the window ordered oldest to newest, plus the index of
// the oldest live slot in the underlying storage. When the buffer is full,
// the slot about to be overwritten next is also the oldest sample, so the
// window starts there. While the buffer is still warming up (or right after
// a clear), leading unwritten slots are skipped so the oldest written value
// comes first; copying then stops at the next zero slot and the tail of the
// returned window stays zero-padded.
func (w *Window) Snapshot() (window [Size]uint32, start int) {
	start = w.nextIndex
	offset := 0
	for ; offset < Size; offset++ {
		if w.buf[(w.nextIndex+offset)%Size] != 0 {
			start = (w.nextIndex + offset) % Size
			break
		}
	}
	if offset == Size {
		// Nothing written since the last clear.
		return window, w.nextIndex
	}
	for i := 0; i < Size-offset; i++ {
		v := w.buf[(start+i)%Size]
		if v == 0 {
			break
		}
		window[i] = v
	}
	return window, start
}

// ClearRegion zeroes count slots starting at start, wrapping around the end
// of the buffer. Used after a successful match so the same physical samples
// cannot trigger a second, overlapping match on the next poll.
func (w *Window) ClearRegion(start, count int) {
	for i := start; i < start+count; i++ {
		w.buf[i%Size] = 0
	}
}
