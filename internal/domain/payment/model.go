package payment

import (
	"errors"
	"strings"
	"time"
)

// Payment status constants
const (
	StatusSucceeded = "succeeded"
	StatusDeclined  = "declined"
	StatusFailed    = "failed"
)

// Domain errors
var (
	ErrEmptySlotID    = errors.New("payment slot ID cannot be empty")
	ErrEmptyPlayerID  = errors.New("payment player ID cannot be empty")
	ErrInvalidAmount  = errors.New("payment amount must be positive")
	ErrInvalidCard    = errors.New("card number must be 12-19 digits")
	ErrExpiredCard    = errors.New("card is expired")
	ErrInvalidExpiry  = errors.New("card expiry must be in MM/YY format")
	ErrCardDeclined   = errors.New("card was declined")
	ErrUnknownOutcome = errors.New("unknown payment status")
)

// Record is the stored outcome of one simulated charge against a slot hold.
// The gateway is a simulation; card details are never persisted, only the
// last four digits.
type Record struct {
	ID        string
	SlotID    string
	PlayerID  string
	Amount    int // cents
	CardLast4 string
	Status    string
	Reference string // gateway reference for the charge
	CreatedAt time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Record) Validate() error {
	if strings.TrimSpace(r.SlotID) == "" {
		return ErrEmptySlotID
	}
	if strings.TrimSpace(r.PlayerID) == "" {
		return ErrEmptyPlayerID
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.Status != StatusSucceeded && r.Status != StatusDeclined && r.Status != StatusFailed {
		return ErrUnknownOutcome
	}
	return nil
}

// Card carries the details submitted for a simulated charge. Only Last4 ever
// leaves this struct.
type Card struct {
	Number string
	Name   string
	Expiry string // MM/YY
	CVC    string
}

// ValidateCard shallow-checks the card details the way the booking form does.
// PRE: Card struct is populated
// POST: Returns nil if the card is plausibly valid at now
func (c *Card) ValidateCard(now time.Time) error {
	digits := strings.ReplaceAll(strings.ReplaceAll(c.Number, " ", ""), "-", "")
	if len(digits) < 12 || len(digits) > 19 {
		return ErrInvalidCard
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return ErrInvalidCard
		}
	}
	exp, err := time.Parse("01/06", c.Expiry)
	if err != nil {
		return ErrInvalidExpiry
	}
	// Card is valid through the end of the expiry month.
	endOfMonth := exp.AddDate(0, 1, 0)
	if !now.Before(endOfMonth) {
		return ErrExpiredCard
	}
	return nil
}

// Last4 returns the last four digits of the card number.
func (c *Card) Last4() string {
	digits := strings.ReplaceAll(strings.ReplaceAll(c.Number, " ", ""), "-", "")
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
