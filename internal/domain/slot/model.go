package slot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"courtside/internal/domain/availability"
)

// Status is the booking lifecycle state of a slot.
type Status string

// Slot status constants
const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []Status{StatusAvailable, StatusPending, StatusBooked, StatusCancelled, StatusCompleted}

// Domain errors
var (
	ErrEmptyCoachID       = errors.New("coach ID cannot be empty")
	ErrEmptyLocationID    = errors.New("location ID cannot be empty")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime        = errors.New("time must be in HH:MM format")
	ErrUnknownStatus      = errors.New("unknown slot status")
	ErrPlayerRequired     = errors.New("status requires a player to be set")
	ErrPlayerNotAllowed   = errors.New("available slots cannot have a player")
	ErrSlotNotAvailable   = errors.New("slot is no longer available")
	ErrSchedulingConflict = errors.New("player already holds a booking at this time")
	ErrNotOwner           = errors.New("booking belongs to another player")
	ErrInvalidState       = errors.New("transition not allowed from current status")
)

// transitions is the closed table of allowed status changes. Anything not
// listed here is rejected with ErrInvalidState; admin overrides bypass the
// table through a separate code path.
var transitions = map[Status][]Status{
	StatusAvailable: {StatusPending},
	StatusPending:   {StatusBooked, StatusAvailable, StatusCancelled},
	StatusBooked:    {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

// Slot is one concrete, dated, timed bookable session derived from an
// availability window. (CoachID, Date, StartTime) is unique among live slots.
type Slot struct {
	ID             string
	CoachID        string
	LocationID     string
	Date           string // YYYY-MM-DD
	StartTime      string // HH:MM
	EndTime        string // HH:MM
	Status         Status
	PlayerID       string    // set while pending/booked/completed, retained on cancel for audit
	SourceWindowID string    // window that generated this slot; traceability only
	HeldAt         time.Time // when the current pending hold was taken
	CreatedAt      time.Time
}

// Validate checks if the Slot has valid data.
// PRE: Slot struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Slot) Validate() error {
	if strings.TrimSpace(s.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if strings.TrimSpace(s.LocationID) == "" {
		return ErrEmptyLocationID
	}
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return ErrInvalidDate
	}
	if _, err := availability.MinuteOfDay(s.StartTime); err != nil {
		return ErrInvalidTime
	}
	if _, err := availability.MinuteOfDay(s.EndTime); err != nil {
		return ErrInvalidTime
	}
	if !IsValidStatus(s.Status) {
		return ErrUnknownStatus
	}
	return s.checkPlayerInvariant()
}

// checkPlayerInvariant enforces: PlayerID set iff status holds a player.
// Cancelled may carry a player (cancellation after booking keeps it for audit).
func (s *Slot) checkPlayerInvariant() error {
	switch s.Status {
	case StatusAvailable:
		if s.PlayerID != "" {
			return ErrPlayerNotAllowed
		}
	case StatusPending, StatusBooked, StatusCompleted:
		if s.PlayerID == "" {
			return ErrPlayerRequired
		}
	}
	return nil
}

// CanTransition reports whether the transition table allows from -> to.
// INVARIANT: the table is the single source of truth for normal transitions
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidStatus returns true for a known status value.
func IsValidStatus(s Status) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsActive returns true while the slot is held or booked by a player.
func (s *Slot) IsActive() bool {
	return s.Status == StatusPending || s.Status == StatusBooked
}

// Key returns the uniqueness key for live slots.
func (s *Slot) Key() string {
	return s.CoachID + "|" + s.Date + "|" + s.StartTime
}

// StartsAt combines Date and StartTime into a wall-clock instant in loc.
// PRE: Date and StartTime are valid
// POST: Returns the session start or an error
func (s *Slot) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot time %s %s: %w", s.Date, s.StartTime, err)
	}
	return t, nil
}

// HoldExpired returns true if a pending hold is older than ttl at now.
// PRE: slot is pending and HeldAt is set
// INVARIANT: Slot fields are not mutated
func (s *Slot) HoldExpired(now time.Time, ttl time.Duration) bool {
	if s.Status != StatusPending || s.HeldAt.IsZero() {
		return false
	}
	return now.Sub(s.HeldAt) > ttl
}
