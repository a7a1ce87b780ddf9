package player

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Grade constants. Self-reported playing level, used by coaches to prepare.
const (
	GradeBeginner     = "beginner"
	GradeIntermediate = "intermediate"
	GradeAdvanced     = "advanced"
)

// ValidGrades contains all valid grade values.
var ValidGrades = []string{GradeBeginner, GradeIntermediate, GradeAdvanced}

// Player is a booking profile linked to a player-role account.
type Player struct {
	ID        string
	AccountID string
	Name      string
	Email     string
	Phone     string
	Grade     string
}

// Validate checks if the Player has valid data.
// PRE: Player struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("player name cannot be empty")
	}
	if len(p.Name) > MaxNameLength {
		return errors.New("player name cannot exceed 100 characters")
	}
	if !strings.Contains(p.Email, "@") {
		return errors.New("player email must be valid")
	}
	if !isValidGrade(p.Grade) {
		return errors.New("grade must be 'beginner', 'intermediate' or 'advanced'")
	}
	return nil
}

func isValidGrade(g string) bool {
	for _, v := range ValidGrades {
		if v == g {
			return true
		}
	}
	return false
}
