package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Domain errors
var (
	ErrEmptyCoachID      = errors.New("coach ID cannot be empty")
	ErrEmptyLocationID   = errors.New("location ID cannot be empty")
	ErrInvalidDay        = errors.New("day must be a valid day of the week")
	ErrInvalidTime       = errors.New("time must be in HH:MM format")
	ErrStartNotBeforeEnd = errors.New("start time must be before end time")
	ErrInvalidDuration   = errors.New("session duration must be a positive number of minutes")
	ErrWindowOverlap     = errors.New("window overlaps an existing window for this coach, location and day")
)

// Window represents a recurring weekly availability range during which a coach
// offers sessions at a location. Concrete bookable slots are derived from
// windows by the slot generator.
type Window struct {
	ID             string
	CoachID        string
	LocationID     string
	Day            string // monday, tuesday, etc.
	StartTime      string // HH:MM format
	EndTime        string // HH:MM format
	SessionMinutes int    // length of each bookable session
}

// Validate checks if the Window has valid data.
// PRE: Window struct is populated
// POST: Returns nil if valid, error otherwise
func (w *Window) Validate() error {
	if strings.TrimSpace(w.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if strings.TrimSpace(w.LocationID) == "" {
		return ErrEmptyLocationID
	}
	if !isValidDay(w.Day) {
		return ErrInvalidDay
	}
	start, err := MinuteOfDay(w.StartTime)
	if err != nil {
		return ErrInvalidTime
	}
	end, err := MinuteOfDay(w.EndTime)
	if err != nil {
		return ErrInvalidTime
	}
	if start >= end {
		return ErrStartNotBeforeEnd
	}
	if w.SessionMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// Overlaps returns true if the two windows share any point in time on the
// same coach, location and day. Intervals are half-open, so a window ending
// at 17:00 does not overlap one starting at 17:00.
// PRE: both windows have validated times
// INVARIANT: Window fields are not mutated
func (w *Window) Overlaps(other Window) bool {
	if w.CoachID != other.CoachID || w.LocationID != other.LocationID || w.Day != other.Day {
		return false
	}
	aStart, err := MinuteOfDay(w.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := MinuteOfDay(w.EndTime)
	if err != nil {
		return false
	}
	bStart, err := MinuteOfDay(other.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := MinuteOfDay(other.EndTime)
	if err != nil {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// MinuteOfDay parses an HH:MM string into minutes since midnight.
// PRE: s is in HH:MM format
// POST: Returns minutes in [0, 1440) or an error
func MinuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinute renders minutes since midnight as an HH:MM string.
// PRE: m is in [0, 1440)
// POST: Returns the zero-padded HH:MM representation
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DayOf returns the lowercase weekday name for a date.
func DayOf(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

func isValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}
