package audit

import (
	"time"
)

// Category represents the type of audit event.
type Category string

const (
	CategoryAccount      Category = "account"
	CategoryAvailability Category = "availability"
	CategoryGeneration   Category = "generation"
	CategoryBooking      Category = "booking"
	CategoryPayment      Category = "payment"
	CategorySecurity     Category = "security"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate   Action = "create"
	ActionDelete   Action = "delete"
	ActionReserve  Action = "reserve"
	ActionConfirm  Action = "confirm"
	ActionRelease  Action = "release"
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionOverride Action = "override"
	ActionGenerate Action = "generate"
	ActionLogin    Action = "login"
)

// Event is a single audit log entry. Booking transitions and admin overrides
// always leave one, cancelled slots keep their player for the same reason.
type Event struct {
	ID           string
	Timestamp    time.Time
	Category     Category
	Action       Action
	ActorID      string
	ActorRole    string
	ResourceID   string
	ResourceType string
	Detail       string
}

// NewEvent creates an audit event stamped at now.
// PRE: actorID is non-empty; action and category are valid constants
// POST: Returns an Event ready to persist
func NewEvent(actorID, actorRole string, category Category, action Action, now time.Time) Event {
	return Event{
		Timestamp: now,
		Category:  category,
		Action:    action,
		ActorID:   actorID,
		ActorRole: actorRole,
	}
}

// ForResource attaches the acted-on resource.
func (e Event) ForResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDetail attaches a human-readable description.
func (e Event) WithDetail(detail string) Event {
	e.Detail = detail
	return e
}
