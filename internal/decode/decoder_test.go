package decode

import (
	"testing"
	"time"

	"github.com/sweeney/rc-decoder/internal/capture"
	"github.com/sweeney/rc-decoder/internal/pattern"
)

func mustTemplate(t *testing.T, periods [pattern.MaxPeriods]uint16, tolerance float64) pattern.Template {
	t.Helper()
	tpl, err := pattern.New(periods, tolerance)
	if err != nil {
		t.Fatalf("pattern.New(%v): %v", periods, err)
	}
	return tpl
}

func newTestDecoder(t *testing.T, templates ...pattern.Template) (*Decoder, *capture.State) {
	t.Helper()
	state := capture.NewState()
	set := &pattern.Set{}
	for _, tpl := range templates {
		if err := set.Add(tpl); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	startTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewDecoder(state, set, startTime), state
}

func TestPollNothingNew(t *testing.T) {
	sync := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 1080, 360, 1080, 0, 0, 0, 0}, 0.15)
	d, _ := newTestDecoder(t, sync)

	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	if events := d.Poll(now); events != nil {
		t.Errorf("expected nil events on clean window, got %v", events)
	}
}

// TestPollEndToEnd pushes a sync burst into an empty window, polls once, and
// verifies the matched region is cleared so the same samples cannot trigger
// again.
func TestPollEndToEnd(t *testing.T) {
	sync := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 1080, 360, 1080, 0, 0, 0, 0}, 0.15)
	d, state := newTestDecoder(t, sync)

	for _, p := range []uint32{360, 1080, 360, 1080} {
		state.Push(p)
	}

	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	events := d.Poll(now)
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(events))
	}

	e := events[0]
	if e.TemplateIndex != 0 {
		t.Errorf("expected template index 0, got %d", e.TemplateIndex)
	}
	if !e.Sync {
		t.Error("first-registered template match must be flagged as sync")
	}
	if e.WindowStart != 0 {
		t.Errorf("expected window start 0, got %d", e.WindowStart)
	}
	if e.Length != 4 {
		t.Errorf("expected 4 slots cleared, got %d", e.Length)
	}
	if !e.Timestamp.Equal(now) {
		t.Errorf("expected timestamp %v, got %v", now, e.Timestamp)
	}
	want := [capture.Size]uint32{360, 1080, 360, 1080, 0, 0, 0, 0}
	if e.Window != want {
		t.Errorf("expected window %v, got %v", want, e.Window)
	}

	// Re-snapshot: the matched slots must be zero now.
	state.Push(999)
	window, _, ok := state.SnapshotIfDirty()
	if !ok {
		t.Fatal("expected dirty after push")
	}
	for i := 1; i < capture.Size; i++ {
		if window[i] != 0 {
			t.Errorf("slot %d of re-snapshot should be zero, got %d", i, window[i])
		}
	}
	if window[0] != 999 {
		t.Errorf("expected only the fresh sample to survive, got %v", window)
	}
}

func TestPollDoesNotRematchClearedSamples(t *testing.T) {
	sync := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 1080, 360, 1080, 0, 0, 0, 0}, 0.15)
	d, state := newTestDecoder(t, sync)

	for _, p := range []uint32{360, 1080, 360, 1080} {
		state.Push(p)
	}

	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	if events := d.Poll(now); len(events) != 1 {
		t.Fatalf("expected 1 match on first poll, got %d", len(events))
	}

	// An unrelated sample arrives; the old burst must not re-trigger.
	state.Push(500)
	if events := d.Poll(now.Add(50 * time.Millisecond)); len(events) != 0 {
		t.Errorf("cleared samples re-triggered a match: %v", events)
	}
}

func TestPollColdWindowNoFalseSync(t *testing.T) {
	wide := mustTemplate(t, [pattern.MaxPeriods]uint16{1000, 0, 0, 0, 0, 0, 0, 0}, 0.99)
	d, state := newTestDecoder(t, wide)

	// Mark dirty without leaving a usable sample: push then clear.
	state.Push(5000)
	state.ClearRegion(0, 1)

	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	if events := d.Poll(now); len(events) != 0 {
		t.Errorf("cold window matched: %v", events)
	}
}

func TestPollEvaluatesAllTemplates(t *testing.T) {
	// The sync template consumes the leading burst; a second template over
	// the same snapshot still sees the original window within this poll.
	sync := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 1080, 0, 0, 0, 0, 0, 0}, 0.15)
	alsoLeading := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 0, 0, 0, 0, 0, 0, 0}, 0.15)
	d, state := newTestDecoder(t, sync, alsoLeading)

	state.Push(360)
	state.Push(1080)

	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	events := d.Poll(now)
	if len(events) != 2 {
		t.Fatalf("expected both templates to match the snapshot, got %d events", len(events))
	}
	if events[0].TemplateIndex != 0 || events[1].TemplateIndex != 1 {
		t.Errorf("expected registration order 0 then 1, got %d then %d",
			events[0].TemplateIndex, events[1].TemplateIndex)
	}
	if !events[0].Sync || events[1].Sync {
		t.Error("only the first-registered template is the sync pattern")
	}
}

func TestCountsSnapshot(t *testing.T) {
	sync := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 1080, 360, 1080, 0, 0, 0, 0}, 0.15)
	d, state := newTestDecoder(t, sync)

	for _, p := range []uint32{360, 1080, 360, 1080} {
		state.Push(p)
	}
	state.Reject()

	now := time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)
	d.Poll(now)

	counts := d.CountsSnapshot()
	if counts.Matches[0] != 1 {
		t.Errorf("expected 1 match for template 0, got %d", counts.Matches[0])
	}
	if counts.Sync != 1 {
		t.Errorf("expected 1 sync hit, got %d", counts.Sync)
	}
	if counts.Accepted != 4 {
		t.Errorf("expected 4 accepted samples, got %d", counts.Accepted)
	}
	if counts.Rejected != 1 {
		t.Errorf("expected 1 rejected sample, got %d", counts.Rejected)
	}

	last, idx := d.LastMatch()
	if !last.Equal(now) || idx != 0 {
		t.Errorf("expected last match at %v index 0, got %v index %d", now, last, idx)
	}
}

func TestCheckHeartbeat(t *testing.T) {
	sync := mustTemplate(t, [pattern.MaxPeriods]uint16{360, 1080, 360, 1080, 0, 0, 0, 0}, 0.15)
	d, _ := newTestDecoder(t, sync)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if hb := d.CheckHeartbeat(start.Add(time.Minute), 0); hb != nil {
		t.Error("heartbeat disabled with interval 0")
	}
	if hb := d.CheckHeartbeat(start.Add(time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat before interval elapsed")
	}

	hb := d.CheckHeartbeat(start.Add(15*time.Minute), 15*time.Minute)
	if hb == nil {
		t.Fatal("expected heartbeat after interval")
	}
	if hb.Uptime != 15*time.Minute {
		t.Errorf("expected uptime 15m, got %v", hb.Uptime)
	}

	// Interval restarts from the heartbeat just emitted.
	if hb := d.CheckHeartbeat(start.Add(16*time.Minute), 15*time.Minute); hb != nil {
		t.Error("heartbeat interval should have reset")
	}
}
