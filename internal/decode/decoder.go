package decode

import (
	"time"

	"github.com/sweeney/rc-decoder/internal/capture"
	"github.com/sweeney/rc-decoder/internal/pattern"
)

// Decoder polls the capture window and reports template matches. All
// decode statefulness lives in the window's accumulated ring contents; the
// decoder itself only keeps counters.
type Decoder struct {
	state         *capture.State
	set           *pattern.Set
	counts        Counts
	startTime     time.Time
	lastHeartbeat time.Time
	lastMatch     time.Time
	lastIndex     int
}

// NewDecoder creates a decoder reading from the given shared state and
// matching against the given template set. The startTime is used for
// uptime in heartbeat events.
func NewDecoder(state *capture.State, set *pattern.Set, startTime time.Time) *Decoder {
	return &Decoder{
		state:         state,
		set:           set,
		startTime:     startTime,
		lastHeartbeat: startTime,
		lastIndex:     -1,
	}
}

// Poll examines the capture window once and returns any recognized
// patterns. It returns nil when nothing was pushed since the previous poll.
//
// Every template is evaluated against the same snapshot, in registration
// order; matches are not mutually exclusive within one poll. Each match
// clears its region using the window start captured with the snapshot, so
// an earlier match consumes slots that later templates only stop seeing on
// the next poll. This ordering dependency is intentional.
func (d *Decoder) Poll(now time.Time) []Event {
	window, start, ok := d.state.SnapshotIfDirty()
	if !ok {
		return nil
	}

	var events []Event
	for i, tpl := range d.set.Active() {
		if !tpl.Matches(window) {
			continue
		}

		events = append(events, Event{
			Timestamp:     now,
			TemplateIndex: i,
			Sync:          i == 0,
			Periods:       tpl.Periods(),
			Window:        window,
			WindowStart:   start,
			Length:        tpl.Size(),
		})

		d.counts.Matches[i]++
		if i == 0 {
			d.counts.Sync++
		}
		d.lastMatch = now
		d.lastIndex = i

		d.state.ClearRegion(start, tpl.Size())
	}

	return events
}

// CountsSnapshot returns current totals, including sample accept/reject
// counts from the capture state.
func (d *Decoder) CountsSnapshot() Counts {
	c := d.counts
	c.Accepted, c.Rejected = d.state.SampleCounts()
	return c
}

// LastMatch returns the time and template index of the most recent match.
// The index is -1 when nothing has matched yet.
func (d *Decoder) LastMatch() (time.Time, int) {
	return d.lastMatch, d.lastIndex
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed, or if interval is <= 0 (disabled).
func (d *Decoder) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.CountsSnapshot(),
	}
}
