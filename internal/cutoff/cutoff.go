// Package cutoff resolves the user's choice of "how old must a message be to
// be deleted" into a single UTC instant, or into the delete-everything mode.
package cutoff

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidArgument is returned when the policy is given a value it can't
// represent, i.e. non-positive number of days, or unparseable input.
var ErrInvalidArgument = errors.New("invalid argument")

const day = 24 * time.Hour

// Mode is the active cutoff mode.
type Mode int

const (
	ModeUnset   Mode = iota // nothing chosen yet
	ModeAll                 // every message is eligible
	ModeDays                // older than N days
	ModeInstant             // older than an absolute instant
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeDays:
		return "days"
	case ModeInstant:
		return "instant"
	default:
		return "unset"
	}
}

// Policy decides which messages are old enough to be deleted.  Only one mode
// is active at a time, setting a mode clears the previous one.  The zero value
// is not usable, call New.
type Policy struct {
	mode   Mode
	days   int
	cutoff time.Time // always UTC

	loc *time.Location
	now func() time.Time
}

type Option func(*Policy)

// WithLocation sets the location used to interpret naive (wall clock)
// timestamps.  Default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Policy) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithClock overrides the clock used to resolve the days threshold.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

func New(opts ...Option) *Policy {
	p := &Policy{
		loc: time.Local,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetDeleteAll makes every message eligible.
func (p *Policy) SetDeleteAll() {
	p.mode = ModeAll
	p.days = 0
	p.cutoff = time.Time{}
}

// SetDays sets the cutoff to now minus days.
func (p *Policy) SetDays(days int) error {
	if days <= 0 {
		return fmt.Errorf("%w: days must be a positive integer, got %d", ErrInvalidArgument, days)
	}
	p.mode = ModeDays
	p.days = days
	p.cutoff = p.now().UTC().Add(-time.Duration(days) * day)
	return nil
}

// SetCutoff sets the absolute cutoff instant.  t carries its own location.
func (p *Policy) SetCutoff(t time.Time) {
	p.mode = ModeInstant
	p.days = 0
	p.cutoff = t.UTC()
}

// SetCutoffLocal sets the absolute cutoff from a wall clock time that has no
// meaningful location, it is interpreted in the policy location.
func (p *Policy) SetCutoffLocal(wall time.Time) {
	p.SetCutoff(p.localize(wall))
}

// localize reinterprets the wall clock of t in the policy location.
func (p *Policy) localize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), p.loc)
}

// Resolved returns true if any mode has been chosen.
func (p *Policy) Resolved() bool {
	return p != nil && p.mode != ModeUnset
}

func (p *Policy) Mode() Mode {
	return p.mode
}

// Days returns the number of days, if the policy is in ModeDays.
func (p *Policy) Days() int {
	return p.days
}

// Cutoff returns the resolved UTC instant and true, or zero time and false in
// ModeAll and ModeUnset.
func (p *Policy) Cutoff() (time.Time, bool) {
	if p.mode != ModeDays && p.mode != ModeInstant {
		return time.Time{}, false
	}
	return p.cutoff, true
}

// IsEligible reports whether the message sent at t should be deleted.  The
// boundary is inclusive: a message sent exactly at the cutoff is eligible.
func (p *Policy) IsEligible(t time.Time) bool {
	switch p.mode {
	case ModeAll:
		return true
	case ModeDays, ModeInstant:
		return !t.UTC().After(p.cutoff)
	default:
		return false
	}
}

// IsEligibleLocal is IsEligible for wall clock times without location.
func (p *Policy) IsEligibleLocal(wall time.Time) bool {
	return p.IsEligible(p.localize(wall))
}

const describeLayout = "2006-01-02 15:04:05 MST"

// Describe returns the cutoff formatted in the policy location and in UTC.
// Both are empty if there's no cutoff instant.
func (p *Policy) Describe() (local string, utc string) {
	c, ok := p.Cutoff()
	if !ok {
		return "", ""
	}
	return c.In(p.loc).Format(describeLayout), c.Format(describeLayout)
}

func (p *Policy) String() string {
	switch p.mode {
	case ModeAll:
		return "all messages"
	case ModeDays:
		return fmt.Sprintf("messages older than %d day(s)", p.days)
	case ModeInstant:
		local, utc := p.Describe()
		return fmt.Sprintf("messages sent on or before %s (%s)", local, utc)
	default:
		return "cutoff not set"
	}
}
