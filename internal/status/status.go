// Package status provides a thread-safe status tracker for the rc-decoder
// daemon. It is read by HTTP handlers and MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rc-decoder/internal/decode"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// TemplateInfo describes one configured template for display.
type TemplateInfo struct {
	Periods   []uint16
	Tolerance float64
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	TickNs      int64
	MinTicks    uint32
	MaxTicks    uint32
	Chip        string
	Pin         int
	Templates   []TemplateInfo
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Counts         decode.Counts
	CaptureEnabled bool
	LastMatch      time.Time
	LastTemplate   int // -1 when nothing has matched yet
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Network        *NetworkInfo
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:    startTime,
			LastTemplate: -1,
			Config:       cfg,
		},
	}
}

// Update sets decode counts, the capture gate state, and the most recent
// match. Called from the run loop on every poll tick.
func (t *Tracker) Update(counts decode.Counts, captureEnabled bool, lastMatch time.Time, lastTemplate int) {
	t.mu.Lock()
	t.snap.Counts = counts
	t.snap.CaptureEnabled = captureEnabled
	t.snap.LastMatch = lastMatch
	t.snap.LastTemplate = lastTemplate
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
