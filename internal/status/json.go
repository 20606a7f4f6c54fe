package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string         `json:"event,omitempty"`
	Reason         string         `json:"reason,omitempty"`
	CaptureEnabled bool           `json:"capture_enabled"`
	UptimeSeconds  int64          `json:"uptime_seconds"`
	StartTime      string         `json:"start_time"`
	Timestamp      string         `json:"timestamp"`
	LastMatch      string         `json:"last_match,omitempty"`
	LastTemplate   int            `json:"last_template"`
	MQTT           MQTTStatus     `json:"mqtt"`
	Counts         CountsJSON     `json:"counts"`
	Templates      []TemplateJSON `json:"templates"`
	Network        *NetworkJSON   `json:"network,omitempty"`
	Config         ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of decode counts.
type CountsJSON struct {
	Matches  []int  `json:"matches"`
	Sync     int    `json:"sync"`
	Accepted uint64 `json:"samples_accepted"`
	Rejected uint64 `json:"samples_rejected"`
}

// TemplateJSON is the JSON representation of one configured template.
type TemplateJSON struct {
	Periods   []uint16 `json:"periods"`
	Tolerance float64  `json:"tolerance"`
	Matches   int      `json:"matches"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	TickNs      int64  `json:"tick_ns"`
	MinTicks    uint32 `json:"min_ticks"`
	MaxTicks    uint32 `json:"max_ticks"`
	Chip        string `json:"chip"`
	Pin         int    `json:"pin"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	n := len(snap.Config.Templates)
	matches := make([]int, n)
	templates := make([]TemplateJSON, n)
	for i := 0; i < n; i++ {
		matches[i] = snap.Counts.Matches[i]
		templates[i] = TemplateJSON{
			Periods:   snap.Config.Templates[i].Periods,
			Tolerance: snap.Config.Templates[i].Tolerance,
			Matches:   snap.Counts.Matches[i],
		}
	}

	inner := StatusInner{
		CaptureEnabled: snap.CaptureEnabled,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		LastTemplate:   snap.LastTemplate,
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Matches:  matches,
			Sync:     snap.Counts.Sync,
			Accepted: snap.Counts.Accepted,
			Rejected: snap.Counts.Rejected,
		},
		Templates: templates,
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			TickNs:      snap.Config.TickNs,
			MinTicks:    snap.Config.MinTicks,
			MaxTicks:    snap.Config.MaxTicks,
			Chip:        snap.Config.Chip,
			Pin:         snap.Config.Pin,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if !snap.LastMatch.IsZero() {
		inner.LastMatch = snap.LastMatch.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
