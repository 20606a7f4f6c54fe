// Package gpio provides edge capture from a digital input with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device with kernel event timestamps. The fake implementation replays
// scripted edges for testing without hardware.
package gpio

import "time"

// Edge is one transition on the monitored input. Timestamp is the kernel's
// monotonic event time; only differences between consecutive edges carry
// meaning.
type Edge struct {
	Timestamp time.Duration
}

// Source delivers edges from the input pin.
type Source interface {
	// Events returns the channel edges arrive on. Fake sources close the
	// channel when the script is exhausted; the real source leaves it open
	// until Close.
	Events() <-chan Edge

	// Close releases the input resources.
	Close() error
}

// Default capture line (BCM numbering) and chip.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)
