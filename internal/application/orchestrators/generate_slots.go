package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courtside/internal/domain/audit"
	"courtside/internal/domain/availability"
	"courtside/internal/domain/slot"
)

// GenerateSlotStore defines the slot store interface slot generation needs.
type GenerateSlotStore interface {
	ListByCoachDate(ctx context.Context, coachID, date string) ([]slot.Slot, error)
	InsertMissing(ctx context.Context, slots []slot.Slot) (int, error)
	DeleteAvailableByIDs(ctx context.Context, ids []string) (int, error)
}

// GenerateWindowStore defines the availability reads slot generation needs.
type GenerateWindowStore interface {
	List(ctx context.Context) ([]availability.Window, error)
	ListByCoach(ctx context.Context, coachID string) ([]availability.Window, error)
}

// GenerateSlotsInput carries input for a generation run.
type GenerateSlotsInput struct {
	CoachID   string // empty generates for every coach with windows
	FromDate  string // YYYY-MM-DD, inclusive
	Days      int
	ActorID   string
	ActorRole string
}

// GenerateSlotsDeps holds dependencies for GenerateSlots.
type GenerateSlotsDeps struct {
	WindowStore GenerateWindowStore
	SlotStore   GenerateSlotStore
	AuditStore  AuditStore
	GenerateID  func() string
	Now         func() time.Time
}

// GenerationCellError records a failed coach/date cell. One bad cell never
// aborts the rest of the run.
type GenerationCellError struct {
	CoachID string `json:"coach_id"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// GenerationReport summarizes a generation run.
type GenerationReport struct {
	FromDate string                `json:"from_date"`
	ToDate   string                `json:"to_date"` // exclusive
	Created  int                   `json:"created"`
	Kept     int                   `json:"kept"`
	Removed  int                   `json:"removed"`
	Errors   []GenerationCellError `json:"errors,omitempty"`
}

// ExecuteGenerateSlots materializes bookable slots from availability windows
// for the date range [FromDate, FromDate+Days). Generation is idempotent:
// existing slots at a desired start are kept whatever their status, missing
// ones are created, and available slots that no window produces anymore are
// removed. Slots a player holds or has booked are never touched.
// PRE: FromDate is YYYY-MM-DD, Days > 0
// POST: Report totals cover every coach/date cell, failed cells in Errors
// INVARIANT: a pending/booked/completed/cancelled slot survives every run
func ExecuteGenerateSlots(ctx context.Context, input GenerateSlotsInput, deps GenerateSlotsDeps) (GenerationReport, error) {
	from, err := time.Parse("2006-01-02", input.FromDate)
	if err != nil {
		return GenerationReport{}, slot.ErrInvalidDate
	}
	if input.Days <= 0 {
		return GenerationReport{}, fmt.Errorf("days must be positive, got %d", input.Days)
	}

	var windows []availability.Window
	if input.CoachID != "" {
		windows, err = deps.WindowStore.ListByCoach(ctx, input.CoachID)
	} else {
		windows, err = deps.WindowStore.List(ctx)
	}
	if err != nil {
		return GenerationReport{}, err
	}

	// Insertion order is kept per coach so a window defined later wins when
	// two windows produce the same start time.
	byCoach := map[string][]availability.Window{}
	var coachOrder []string
	for _, w := range windows {
		if _, seen := byCoach[w.CoachID]; !seen {
			coachOrder = append(coachOrder, w.CoachID)
		}
		byCoach[w.CoachID] = append(byCoach[w.CoachID], w)
	}

	report := GenerationReport{
		FromDate: input.FromDate,
		ToDate:   from.AddDate(0, 0, input.Days).Format("2006-01-02"),
	}
	now := deps.Now()

	for day := 0; day < input.Days; day++ {
		date := from.AddDate(0, 0, day)
		dateStr := date.Format("2006-01-02")
		dayName := availability.DayOf(date)

		for _, coachID := range coachOrder {
			desired := desiredSlots(byCoach[coachID], coachID, dateStr, dayName, now, deps.GenerateID)

			created, kept, removed, err := reconcileCell(ctx, deps.SlotStore, coachID, dateStr, desired)
			if err != nil {
				report.Errors = append(report.Errors, GenerationCellError{
					CoachID: coachID, Date: dateStr, Message: err.Error(),
				})
				slog.Error("generation_cell_failed", "coach_id", coachID, "date", dateStr, "error", err)
				continue
			}
			report.Created += created
			report.Kept += kept
			report.Removed += removed
		}
	}

	slog.Info("generation_event", "event", "slots_generated", "from", report.FromDate,
		"to", report.ToDate, "created", report.Created, "kept", report.Kept,
		"removed", report.Removed, "failed_cells", len(report.Errors))
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryGeneration, audit.ActionGenerate, "slot_range", report.FromDate,
		fmt.Sprintf("created=%d kept=%d removed=%d", report.Created, report.Kept, report.Removed), now)

	return report, nil
}

// desiredSlots tiles each window matching dayName into session-length slots
// and merges them by start time. The window list is in definition order, so
// a later window overwrites an earlier one at the same start.
func desiredSlots(windows []availability.Window, coachID, dateStr, dayName string,
	now time.Time, generateID func() string) map[string]slot.Slot {
	desired := map[string]slot.Slot{}
	for _, w := range windows {
		if w.Day != dayName {
			continue
		}
		startMin, err := availability.MinuteOfDay(w.StartTime)
		if err != nil {
			continue
		}
		endMin, err := availability.MinuteOfDay(w.EndTime)
		if err != nil {
			continue
		}
		// Tile [start, end) and drop the remainder that no longer fits.
		for m := startMin; m+w.SessionMinutes <= endMin; m += w.SessionMinutes {
			start := availability.FormatMinute(m)
			desired[start] = slot.Slot{
				ID:             generateID(),
				CoachID:        coachID,
				LocationID:     w.LocationID,
				Date:           dateStr,
				StartTime:      start,
				EndTime:        availability.FormatMinute(m + w.SessionMinutes),
				Status:         slot.StatusAvailable,
				SourceWindowID: w.ID,
				CreatedAt:      now,
			}
		}
	}
	return desired
}

// reconcileCell brings one coach/date cell in line with the desired set.
func reconcileCell(ctx context.Context, store GenerateSlotStore, coachID, dateStr string,
	desired map[string]slot.Slot) (created, kept, removed int, err error) {
	existing, err := store.ListByCoachDate(ctx, coachID, dateStr)
	if err != nil {
		return 0, 0, 0, err
	}

	existingStarts := map[string]bool{}
	var stale []string
	for _, s := range existing {
		existingStarts[s.StartTime] = true
		if _, wanted := desired[s.StartTime]; !wanted && s.Status == slot.StatusAvailable {
			stale = append(stale, s.ID)
		}
	}

	var missing []slot.Slot
	for start, s := range desired {
		if !existingStarts[start] {
			missing = append(missing, s)
		}
	}

	if len(missing) > 0 {
		// InsertMissing skips rows another run created concurrently; those
		// count as kept, not created.
		n, err := store.InsertMissing(ctx, missing)
		if err != nil {
			return 0, 0, 0, err
		}
		created = n
	}
	kept = len(desired) - created

	if len(stale) > 0 {
		n, err := store.DeleteAvailableByIDs(ctx, stale)
		if err != nil {
			return created, kept, 0, err
		}
		removed = n
	}
	return created, kept, removed, nil
}
