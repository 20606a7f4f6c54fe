// Package pattern implements tolerance-based period templates and the
// fixed-capacity template set the decoder matches the capture window
// against. Templates are built once at startup and read-only afterwards,
// so they need no synchronization.
package pattern

import "errors"

const (
	// MaxPeriods is the template capacity; it matches the capture window size.
	// The last slot is reserved for the zero terminator, so a template holds
	// at most MaxPeriods-1 meaningful periods.
	MaxPeriods = 8

	// MaxTemplates is the capacity of a Set.
	MaxTemplates = 8
)

// ErrNoTerminator reports a template whose period array has no zero entry.
// Every template must terminate before filling the full capacity.
var ErrNoTerminator = errors.New("pattern: template has no zero terminator")

// ErrSetFull reports an attempt to register more templates than a Set holds.
var ErrSetFull = errors.New("pattern: template set full")

// Template is an ordered, zero-terminated sequence of expected periods in
// timer ticks, with a tolerance fraction. Trailing entries past the first
// zero are don't-care. Immutable after construction.
type Template struct {
	periods   [MaxPeriods]uint16
	size      int
	tolerance float64
}

// New derives the template size as the index of the first zero entry in
// periods. An array with no zero entry is a configuration defect and
// returns ErrNoTerminator.
func New(periods [MaxPeriods]uint16, tolerance float64) (Template, error) {
	size := MaxPeriods
	for i, p := range periods {
		if p == 0 {
			size = i
			break
		}
	}
	if size == MaxPeriods {
		return Template{}, ErrNoTerminator
	}
	return Template{periods: periods, size: size, tolerance: tolerance}, nil
}

// Size returns the number of meaningful periods. A size of zero denotes an
// empty template, which never matches.
func (t Template) Size() int {
	return t.size
}

// Tolerance returns the tolerance fraction.
func (t Template) Tolerance() float64 {
	return t.tolerance
}

// Periods returns a copy of the meaningful periods.
func (t Template) Periods() []uint16 {
	return append([]uint16(nil), t.periods[:t.size]...)
}

// Matches reports whether the window satisfies the template. Comparison per
// element uses an open tolerance interval: a period exactly at
// target*(1±tolerance) does not match. The check fails fast on the first
// period out of tolerance. A zero window slot means the window holds fewer
// samples than the template needs, which is a definite non-match.
func (t Template) Matches(window [MaxPeriods]uint32) bool {
	if t.size == 0 {
		return false
	}
	for i := 0; i < MaxPeriods; i++ {
		if t.periods[i] == 0 {
			// Template exhausted before the window: match.
			return true
		}
		if window[i] == 0 {
			return false
		}
		target := float64(t.periods[i])
		slack := target * t.tolerance
		actual := float64(window[i])
		if actual <= target-slack || actual >= target+slack {
			return false
		}
	}
	return true
}

// Set is a fixed-capacity, append-only collection of templates. The first
// registered template is the synchronization pattern by convention.
type Set struct {
	templates [MaxTemplates]Template
}

// Add stores the template in the first empty slot. Exceeding the capacity
// is a configuration defect and returns ErrSetFull.
func (s *Set) Add(t Template) error {
	for i := range s.templates {
		if s.templates[i].size == 0 {
			s.templates[i] = t
			return nil
		}
	}
	return ErrSetFull
}

// Active returns the populated templates in registration order.
func (s *Set) Active() []Template {
	for i := range s.templates {
		if s.templates[i].size == 0 {
			return s.templates[:i]
		}
	}
	return s.templates[:]
}

// Len returns the number of populated templates.
func (s *Set) Len() int {
	return len(s.Active())
}
