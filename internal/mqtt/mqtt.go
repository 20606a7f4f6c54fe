// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rc-decoder/internal/decode"
)

// Topic is the MQTT topic for recognized-pattern events.
const Topic = "rc/decoder/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "rc/decoder/system"

// Publisher publishes decoder events to MQTT.
type Publisher interface {
	// Publish sends a recognized-pattern event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event decode.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure for matches.
type Payload struct {
	Match MatchPayload `json:"match"`
}

// MatchPayload contains the recognized-pattern details.
type MatchPayload struct {
	Timestamp   string   `json:"timestamp"`
	Template    int      `json:"template"`
	Sync        bool     `json:"sync"`
	Periods     []uint16 `json:"periods"`
	Window      []uint32 `json:"window"`
	WindowStart int      `json:"window_start"`
}

// FormatPayload creates the JSON payload for a match event.
func FormatPayload(event decode.Event) ([]byte, error) {
	payload := Payload{
		Match: MatchPayload{
			Timestamp:   event.Timestamp.UTC().Format(time.RFC3339Nano),
			Template:    event.TemplateIndex,
			Sync:        event.Sync,
			Periods:     event.Periods,
			Window:      event.Window[:],
			WindowStart: event.WindowStart,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
