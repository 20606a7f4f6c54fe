// Package decode contains the polling decoder that matches the capture
// window against the template set. This package has no hardware or MQTT
// dependencies; time is always injectable via time.Time parameters.
package decode

import (
	"time"

	"github.com/sweeney/rc-decoder/internal/capture"
	"github.com/sweeney/rc-decoder/internal/pattern"
)

// Event represents one recognized pattern, to be published.
type Event struct {
	Timestamp     time.Time
	TemplateIndex int
	// Sync marks a match of the first-registered template, the
	// synchronization pattern by convention.
	Sync bool
	// Periods is the template's expected period sequence.
	Periods []uint16
	// Window is the snapshot the match was found in, oldest first.
	Window [capture.Size]uint32
	// WindowStart is the storage index of the oldest window sample at
	// snapshot time.
	WindowStart int
	// Length is the number of window slots cleared after the match.
	Length int
}

// Counts tracks decode totals since startup.
type Counts struct {
	// Matches holds per-template match counts, indexed by registration order.
	Matches [pattern.MaxTemplates]int
	// Sync counts matches of the synchronization template.
	Sync int
	// Accepted and Rejected count samples at the capture filter.
	Accepted uint64
	Rejected uint64
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
