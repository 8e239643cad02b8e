package attendance

import (
	"fmt"
	"strings"
	"time"

	attendanceerrors "face-attendance/internal/attendance/errors"
	"face-attendance/internal/config"
)

type RepeatPolicy string

const (
	// RepeatReject refuses any event after the day's check-out.
	RepeatReject RepeatPolicy = "reject"
	// RepeatNewPair opens a new check-in/check-out pair after a check-out.
	RepeatNewPair RepeatPolicy = "new_pair"
)

const (
	DefaultCutoff = 9 * time.Hour
	dateLayout    = "2006-01-02"
)

// Policy holds the clock rules of the state machine. Cutoff is an offset
// from local midnight in Location.
type Policy struct {
	Location *time.Location
	Cutoff   time.Duration
	Repeat   RepeatPolicy
}

func DefaultPolicy() Policy {
	return Policy{Location: time.Local, Cutoff: DefaultCutoff, Repeat: RepeatReject}
}

func NewPolicy(cfg config.AttendanceConfig) (Policy, error) {
	p := DefaultPolicy()

	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Policy{}, attendanceerrors.ErrInvalidPolicy.WithCause(err)
		}
		p.Location = loc
	}

	if cfg.LateCutoff != "" {
		cutoff, err := ParseCutoff(cfg.LateCutoff)
		if err != nil {
			return Policy{}, attendanceerrors.ErrInvalidPolicy.WithCause(err)
		}
		p.Cutoff = cutoff
	}

	switch RepeatPolicy(strings.ToLower(cfg.RepeatPolicy)) {
	case "", RepeatReject:
		p.Repeat = RepeatReject
	case RepeatNewPair:
		p.Repeat = RepeatNewPair
	default:
		return Policy{}, attendanceerrors.ErrInvalidPolicy.WithCause(
			fmt.Errorf("unknown repeat policy %q", cfg.RepeatPolicy),
		)
	}
	return p, nil
}

// ParseCutoff accepts HH:MM or HH:MM:SS.
func ParseCutoff(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid cutoff %q, want HH:MM or HH:MM:SS", s)
}

// DayOf returns the calendar day of t in the policy location, as midnight UTC
// so it round-trips through a DATE column unchanged.
func (p Policy) DayOf(t time.Time) time.Time {
	y, m, d := t.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p Policy) Classify(eventType EventType, at time.Time) Timeliness {
	return Classify(eventType, at.In(p.location()), p.Cutoff)
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// NextEventType decides what the next event of the day is given the last
// one. last is nil when nothing has been recorded yet.
func NextEventType(last *Attendance, repeat RepeatPolicy) (EventType, error) {
	if last == nil {
		return EventCheckIn, nil
	}
	switch last.EventType {
	case EventCheckIn:
		return EventCheckOut, nil
	case EventCheckOut:
		if repeat == RepeatNewPair {
			return EventCheckIn, nil
		}
		return "", attendanceerrors.ErrDayComplete
	default:
		return "", fmt.Errorf("unknown event type %q", last.EventType)
	}
}

// Classify compares wall-clock time of day at second precision: a check-in
// exactly at the cutoff is on time, one second later is late. at must
// already be in the policy location.
func Classify(eventType EventType, at time.Time, cutoff time.Duration) Timeliness {
	if eventType != EventCheckIn {
		return StatusNone
	}
	sinceMidnight := time.Duration(at.Hour())*time.Hour +
		time.Duration(at.Minute())*time.Minute +
		time.Duration(at.Second())*time.Second
	if sinceMidnight <= cutoff {
		return StatusOnTime
	}
	return StatusLate
}
