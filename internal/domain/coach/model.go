package coach

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
	MaxBioLength  = 4000
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Domain errors
var (
	ErrAlreadyInactive = errors.New("coach is already inactive")
	ErrAlreadyActive   = errors.New("coach is already active")
)

// Coach is a coaching profile linked to a coach-role account. Bio is
// markdown, rendered on the public profile.
type Coach struct {
	ID         string
	AccountID  string
	Name       string
	Email      string
	Bio        string
	HourlyRate int // cents per hour, informational
	Status     string
}

// Validate checks if the Coach has valid data.
// PRE: Coach struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (c *Coach) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("coach name cannot be empty")
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("coach name cannot exceed 100 characters")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("coach email must be valid")
	}
	if len(c.Bio) > MaxBioLength {
		return errors.New("coach bio cannot exceed 4000 characters")
	}
	if c.Status != StatusActive && c.Status != StatusInactive {
		return errors.New("status must be 'active' or 'inactive'")
	}
	return nil
}

// IsActive returns true if the coach currently takes bookings.
// INVARIANT: Status field is not mutated
func (c *Coach) IsActive() bool {
	return c.Status == StatusActive
}

// Deactivate takes the coach off the booking surface.
// PRE: Coach is active
// POST: Status is inactive; existing bookings are untouched
func (c *Coach) Deactivate() error {
	if c.Status == StatusInactive {
		return ErrAlreadyInactive
	}
	c.Status = StatusInactive
	return nil
}

// Activate restores the coach to the booking surface.
// PRE: Coach is inactive
// POST: Status is active
func (c *Coach) Activate() error {
	if c.Status == StatusActive {
		return ErrAlreadyActive
	}
	c.Status = StatusActive
	return nil
}
