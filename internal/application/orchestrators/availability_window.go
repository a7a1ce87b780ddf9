package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"courtside/internal/domain/audit"
	"courtside/internal/domain/availability"
)

// WindowStore defines the availability store interface for window management.
type WindowStore interface {
	GetByID(ctx context.Context, id string) (availability.Window, error)
	Save(ctx context.Context, w availability.Window) error
	Delete(ctx context.Context, id string) error
	ListByCoachDay(ctx context.Context, coachID, day string) ([]availability.Window, error)
}

// AuditStore defines the audit interface orchestrators write events through.
type AuditStore interface {
	Save(ctx context.Context, e audit.Event) error
}

// AddWindowInput carries input for creating an availability window.
type AddWindowInput struct {
	CoachID        string
	LocationID     string
	Day            string
	StartTime      string
	EndTime        string
	SessionMinutes int
	ActorID        string
	ActorRole      string
}

// AddWindowDeps holds dependencies for AddWindow.
type AddWindowDeps struct {
	WindowStore WindowStore
	AuditStore  AuditStore // optional: nil skips audit
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteAddWindow validates and persists a recurring availability window.
// Overlap with an existing window for the same coach, location and day is
// rejected before anything is written.
// PRE: input fields are caller-supplied and untrusted
// POST: Window persisted, or a validation error (availability.Err*)
func ExecuteAddWindow(ctx context.Context, input AddWindowInput, deps AddWindowDeps) (availability.Window, error) {
	w := availability.Window{
		ID:             deps.GenerateID(),
		CoachID:        strings.TrimSpace(input.CoachID),
		LocationID:     strings.TrimSpace(input.LocationID),
		Day:            strings.ToLower(strings.TrimSpace(input.Day)),
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		SessionMinutes: input.SessionMinutes,
	}
	if err := w.Validate(); err != nil {
		return availability.Window{}, err
	}

	existing, err := deps.WindowStore.ListByCoachDay(ctx, w.CoachID, w.Day)
	if err != nil {
		return availability.Window{}, err
	}
	for _, other := range existing {
		if w.Overlaps(other) {
			return availability.Window{}, availability.ErrWindowOverlap
		}
	}

	if err := deps.WindowStore.Save(ctx, w); err != nil {
		return availability.Window{}, err
	}

	slog.Info("availability_event", "event", "window_added", "window_id", w.ID,
		"coach_id", w.CoachID, "day", w.Day, "start", w.StartTime, "end", w.EndTime,
		"session_minutes", w.SessionMinutes)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryAvailability, audit.ActionCreate, "availability_window", w.ID,
		w.Day+" "+w.StartTime+"-"+w.EndTime, deps.Now())

	return w, nil
}

// RemoveWindowInput carries input for removing an availability window.
type RemoveWindowInput struct {
	WindowID  string
	ActorID   string
	ActorRole string
}

// RemoveWindowDeps holds dependencies for RemoveWindow.
type RemoveWindowDeps struct {
	WindowStore WindowStore
	AuditStore  AuditStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteRemoveWindow deletes a window. Removal is idempotent: a missing
// window is a no-op. Slots already generated from the window stay until the
// next generation run reconciles them.
// PRE: WindowID may or may not exist
// POST: Window absent from the store
func ExecuteRemoveWindow(ctx context.Context, input RemoveWindowInput, deps RemoveWindowDeps) error {
	if input.WindowID == "" {
		return errors.New("window ID is required")
	}
	if err := deps.WindowStore.Delete(ctx, input.WindowID); err != nil {
		return err
	}
	slog.Info("availability_event", "event", "window_removed", "window_id", input.WindowID)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryAvailability, audit.ActionDelete, "availability_window", input.WindowID, "", deps.Now())
	return nil
}

// recordAudit writes an audit event, best effort. A failed audit write is
// logged, never propagated into the caller's outcome.
func recordAudit(ctx context.Context, store AuditStore, generateID func() string,
	actorID, actorRole string, category audit.Category, action audit.Action,
	resourceType, resourceID, detail string, now time.Time) {
	if store == nil {
		return
	}
	e := audit.NewEvent(actorID, actorRole, category, action, now).
		ForResource(resourceType, resourceID).
		WithDetail(detail)
	e.ID = generateID()
	if err := store.Save(ctx, e); err != nil {
		slog.Error("audit_write_failed", "category", category, "action", action, "error", err)
	}
}
