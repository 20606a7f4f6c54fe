//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

// eventBacklog buffers kernel edge events while the consumer is busy. When
// the backlog is full the edge is dropped; the oversized period that
// results is rejected by the plausibility filter downstream.
const eventBacklog = 256

var _ Source = (*RealSource)(nil)

// RealSource captures edges from actual hardware using the Linux GPIO
// character device.
type RealSource struct {
	chip    *gpiocdev.Chip
	line    *gpiocdev.Line
	events  chan Edge
	dropped atomic.Uint64
}

// NewRealSource requests the pin with both-edge event detection. Edge
// timestamps come from the kernel, so scheduling jitter in this process
// does not distort the measured periods.
func NewRealSource(chipName string, pin int) (*RealSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSource{
		chip:   chip,
		events: make(chan Edge, eventBacklog),
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request capture pin %d: %w", pin, err)
	}
	s.line = line

	return s, nil
}

func (s *RealSource) handleEvent(evt gpiocdev.LineEvent) {
	select {
	case s.events <- Edge{Timestamp: evt.Timestamp}:
	default:
		s.dropped.Add(1)
	}
}

// Events returns the edge channel.
func (s *RealSource) Events() <-chan Edge {
	return s.events
}

// Dropped reports how many edges were discarded because the consumer
// lagged behind the backlog.
func (s *RealSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Close releases the line and chip. No further edges are delivered after
// Close returns.
func (s *RealSource) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
