// Command rc-decoder measures pulse periods on a GPIO input, matches them
// against configured period templates, and publishes recognized patterns to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/rc-decoder/internal/capture"
	"github.com/sweeney/rc-decoder/internal/decode"
	"github.com/sweeney/rc-decoder/internal/gpio"
	"github.com/sweeney/rc-decoder/internal/mqtt"
	"github.com/sweeney/rc-decoder/internal/pattern"
	"github.com/sweeney/rc-decoder/internal/status"
	"github.com/sweeney/rc-decoder/internal/web"
)

// defaultTemplate is the sync pattern used when no -template flags are given.
const defaultTemplate = "360,1080,360,1080"

// settings bundles the daemon configuration assembled from flags.
type settings struct {
	poll      time.Duration
	heartbeat time.Duration
	broker    string
	httpAddr  string
	chip      string
	pin       int
	tick      time.Duration
	minTicks  uint
	maxTicks  uint
	tolerance float64
	templates []string
	capture   bool
}

func main() {
	var s settings
	var templates templateFlags

	flag.DurationVar(&s.poll, "poll", 50*time.Millisecond, "Decode polling interval")
	flag.DurationVar(&s.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&s.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&s.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&s.chip, "chip", gpio.DefaultChip, "GPIO chip device name")
	flag.IntVar(&s.pin, "pin", gpio.DefaultPin, "BCM pin number of the capture input")
	flag.DurationVar(&s.tick, "tick", capture.DefaultTick, "Timer tick duration")
	flag.UintVar(&s.minTicks, "min-ticks", capture.DefaultMinTicks, "Shortest plausible period in ticks")
	flag.UintVar(&s.maxTicks, "max-ticks", capture.DefaultMaxTicks, "Longest plausible period in ticks")
	flag.Float64Var(&s.tolerance, "tolerance", 0.15, "Template tolerance fraction")
	flag.Var(&templates, "template", "Comma-separated periods in ticks, repeatable; the first is the sync pattern")
	flag.BoolVar(&s.capture, "capture", true, "Start with capture enabled (toggle at runtime with SIGUSR1)")

	flag.Parse()
	s.templates = templates

	set, err := buildTemplateSet(s.templates, s.tolerance)
	if err != nil {
		log.Fatalf("template config: %v", err)
	}

	if err := run(s, set); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// templateFlags collects repeated -template flags.
type templateFlags []string

func (t *templateFlags) String() string {
	return strings.Join(*t, "; ")
}

func (t *templateFlags) Set(v string) error {
	*t = append(*t, v)
	return nil
}

// parsePeriods parses a comma-separated period list into a zero-terminated
// template array. At most pattern.MaxPeriods-1 values fit; the last slot is
// the terminator.
func parsePeriods(s string) ([pattern.MaxPeriods]uint16, error) {
	var periods [pattern.MaxPeriods]uint16

	fields := strings.Split(s, ",")
	if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
		return periods, fmt.Errorf("empty template %q", s)
	}
	if len(fields) > pattern.MaxPeriods-1 {
		return periods, fmt.Errorf("template %q has %d periods, maximum is %d", s, len(fields), pattern.MaxPeriods-1)
	}

	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 16)
		if err != nil {
			return periods, fmt.Errorf("template %q: period %d: %v", s, i, err)
		}
		if v == 0 {
			return periods, fmt.Errorf("template %q: period %d is zero", s, i)
		}
		periods[i] = uint16(v)
	}

	return periods, nil
}

// buildTemplateSet parses and registers the configured templates. Any
// defect here is fatal at startup — the daemon refuses to run with a
// silently-dropped template.
func buildTemplateSet(specs []string, tolerance float64) (*pattern.Set, error) {
	if tolerance <= 0 || tolerance >= 1 {
		return nil, fmt.Errorf("tolerance %v out of range (0, 1)", tolerance)
	}
	if len(specs) == 0 {
		specs = []string{defaultTemplate}
		log.Printf("no templates configured, using default sync pattern %s", defaultTemplate)
	}

	set := &pattern.Set{}
	for _, spec := range specs {
		periods, err := parsePeriods(spec)
		if err != nil {
			return nil, err
		}
		tpl, err := pattern.New(periods, tolerance)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", spec, err)
		}
		if err := set.Add(tpl); err != nil {
			return nil, fmt.Errorf("template %q: %w", spec, err)
		}
	}
	return set, nil
}

func templateInfos(set *pattern.Set) []status.TemplateInfo {
	active := set.Active()
	infos := make([]status.TemplateInfo, len(active))
	for i, t := range active {
		infos[i] = status.TemplateInfo{Periods: t.Periods(), Tolerance: t.Tolerance()}
	}
	return infos
}

func run(s settings, set *pattern.Set) error {
	// Initialize GPIO edge capture
	source, err := gpio.NewRealSource(s.chip, s.pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer source.Close()

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(s.broker)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      s.poll.Milliseconds(),
		HeartbeatMs: s.heartbeat.Milliseconds(),
		TickNs:      s.tick.Nanoseconds(),
		MinTicks:    uint32(s.minTicks),
		MaxTicks:    uint32(s.maxTicks),
		Chip:        s.chip,
		Pin:         s.pin,
		Templates:   templateInfos(set),
		Broker:      s.broker,
		HTTPAddr:    s.httpAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if s.httpAddr != "" {
		srv := web.New(s.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", s.httpAddr)
	}

	log.Printf("started: pin=%s:%d tick=%v range=[%d,%d] poll=%v broker=%s templates=%d",
		s.chip, s.pin, s.tick, s.minTicks, s.maxTicks, s.poll, s.broker, set.Len())

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)

	scaler := capture.NewTickScaler(s.tick)
	corrector := capture.NewCorrector(uint32(s.minTicks), uint32(s.maxTicks))
	state := capture.NewState()

	return runLoop(source.Events(), publisher, publisher, tracker, set,
		scaler, corrector, state, s.capture, s.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(edges <-chan gpio.Edge, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus,
	tracker *status.Tracker, set *pattern.Set, scaler *capture.TickScaler,
	corrector *capture.Corrector, state *capture.State, captureEnabled bool,
	heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	startTime := now()
	decoder := decode.NewDecoder(state, set, startTime)

	for {
		select {
		case s := <-sig:
			if s == syscall.SIGUSR1 {
				captureEnabled = !captureEnabled
				log.Printf("capture %s", enabledString(captureEnabled))
				continue
			}

			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case e, ok := <-edges:
			if !ok {
				// Fake sources close the channel when their script ends.
				edges = nil
				continue
			}
			if !captureEnabled {
				continue
			}

			counter, overflows, ok := scaler.Scale(e.Timestamp)
			if !ok {
				// First edge only establishes the timing baseline.
				continue
			}
			for i := 0; i < overflows; i++ {
				if err := corrector.Overflow(); err != nil {
					log.Printf("capture: %v", err)
					break
				}
			}
			if period, ok := corrector.Capture(counter); ok {
				state.Push(period)
			} else {
				state.Reject()
			}

		case <-tick:
			t := now()

			for _, event := range decoder.Poll(t) {
				if event.Sync {
					log.Printf("sync pattern hit")
				}
				log.Printf("match: template %d periods %v window %v start %d",
					event.TemplateIndex, event.Periods, event.Window, event.WindowStart)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if hbData := decoder.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v sync=%d accepted=%d rejected=%d",
					hbData.Uptime, hbData.Counts.Sync, hbData.Counts.Accepted, hbData.Counts.Rejected)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					last, idx := decoder.LastMatch()
					tracker.Update(decoder.CountsSnapshot(), captureEnabled, last, idx)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				last, idx := decoder.LastMatch()
				tracker.Update(decoder.CountsSnapshot(), captureEnabled, last, idx)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func enabledString(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
