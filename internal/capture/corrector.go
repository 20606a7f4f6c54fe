package capture

import (
	"errors"
	"math"
	"time"
)

// counterRange is the span of the emulated 16-bit capture counter.
const counterRange = 1 << 16

// Default plausibility bounds in timer ticks. Below the minimum a period is
// treated as noise, above the maximum as a gap or disconnection.
const (
	DefaultMinTicks = 200
	DefaultMaxTicks = 20000
)

// DefaultTick is the default tick duration, matching a 1 MHz capture timer.
const DefaultTick = time.Microsecond

// ErrOverflowSaturated reports that more counter wraps accumulated between
// two captures than the overflow counter can represent. This means the
// timer runs far too slow for the configured signal rate; the current
// measurement cycle is corrupted and its period is dropped.
var ErrOverflowSaturated = errors.New("capture: overflow counter saturated, timer too slow for signal")

// Corrector turns raw counter captures into corrected periods and filters
// out implausible measurements. It is used from a single producer goroutine
// and needs no locking.
type Corrector struct {
	minTicks  uint32
	maxTicks  uint32
	overflows uint32
	corrupted bool
}

// NewCorrector creates a Corrector with the given plausibility bounds.
func NewCorrector(minTicks, maxTicks uint32) *Corrector {
	return &Corrector{minTicks: minTicks, maxTicks: maxTicks}
}

// Overflow records one full counter wrap since the last capture. When the
// overflow counter cannot represent another wrap, the measurement cycle is
// marked corrupted and ErrOverflowSaturated is returned; the next capture
// will be dropped.
func (c *Corrector) Overflow() error {
	if c.overflows >= math.MaxUint16 {
		c.corrupted = true
		return ErrOverflowSaturated
	}
	c.overflows++
	return nil
}

// Capture computes the corrected period for a counter snapshot and resets
// the overflow count. ok is false when the sample must be dropped: either
// the cycle was corrupted by overflow saturation, or the period falls
// outside the plausible range.
func (c *Corrector) Capture(counter uint16) (period uint32, ok bool) {
	period = uint32(counter) + counterRange*c.overflows
	c.overflows = 0
	if c.corrupted {
		c.corrupted = false
		return 0, false
	}
	// Zero is never a valid corrected period: it is the window's
	// "unwritten slot" sentinel.
	if period == 0 || period < c.minTicks || period > c.maxTicks {
		return 0, false
	}
	return period, true
}

// TickScaler converts monotonic edge timestamps into the counter/overflow
// form a free-running 16-bit capture timer would deliver, so the same
// correction path runs hosted as on hardware.
type TickScaler struct {
	tick   time.Duration
	last   time.Duration
	primed bool
}

// NewTickScaler creates a scaler for the given tick duration.
func NewTickScaler(tick time.Duration) *TickScaler {
	return &TickScaler{tick: tick}
}

// Scale returns the capture counter value and the number of counter wraps
// for the interval since the previous edge. ok is false for the first edge,
// which only establishes the timing baseline.
func (t *TickScaler) Scale(ts time.Duration) (counter uint16, overflows int, ok bool) {
	if !t.primed {
		t.primed = true
		t.last = ts
		return 0, 0, false
	}
	ticks := int64((ts - t.last) / t.tick)
	t.last = ts
	if ticks < 0 {
		ticks = 0
	}
	return uint16(ticks % counterRange), int(ticks / counterRange), true
}
