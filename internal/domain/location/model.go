package location

import (
	"errors"
	"strings"
)

// Location is a venue with one or more squash courts where sessions run.
type Location struct {
	ID      string
	Name    string
	Address string
	Courts  int
}

// Validate checks if the Location has valid data.
// PRE: Location struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (l *Location) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("location name cannot be empty")
	}
	if l.Courts <= 0 {
		return errors.New("location must have at least one court")
	}
	return nil
}
