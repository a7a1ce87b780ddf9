package projections

import (
	"context"
	"sort"

	"courtside/internal/domain/player"
	"courtside/internal/domain/slot"
)

// ScheduleSlotStore defines the slot reads for a coach's day sheet.
type ScheduleSlotStore interface {
	ListByCoachDate(ctx context.Context, coachID, date string) ([]slot.Slot, error)
}

// SchedulePlayerStore resolves players for the day sheet.
type SchedulePlayerStore interface {
	GetByID(ctx context.Context, id string) (player.Player, error)
}

// GetCoachScheduleInput selects one coach and day.
type GetCoachScheduleInput struct {
	CoachID string
	Date    string // YYYY-MM-DD
}

// GetCoachScheduleDeps holds dependencies for the projection.
type GetCoachScheduleDeps struct {
	SlotStore   ScheduleSlotStore
	PlayerStore SchedulePlayerStore
}

// ScheduleEntry is one slot on the day sheet, with the player resolved when
// one is attached.
type ScheduleEntry struct {
	SlotID      string `json:"slot_id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
	PlayerID    string `json:"player_id,omitempty"`
	PlayerName  string `json:"player_name,omitempty"`
	PlayerGrade string `json:"player_grade,omitempty"`
}

// QueryGetCoachSchedule returns a coach's full day, every status included,
// ordered by start time. Coaches prepare differently for a beginner than an
// advanced player, so the grade rides along.
func QueryGetCoachSchedule(ctx context.Context, input GetCoachScheduleInput, deps GetCoachScheduleDeps) ([]ScheduleEntry, error) {
	slots, err := deps.SlotStore.ListByCoachDate(ctx, input.CoachID, input.Date)
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, 0, len(slots))
	for _, s := range slots {
		e := ScheduleEntry{
			SlotID:    s.ID,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Status:    string(s.Status),
			PlayerID:  s.PlayerID,
		}
		if s.PlayerID != "" {
			if p, err := deps.PlayerStore.GetByID(ctx, s.PlayerID); err == nil {
				e.PlayerName = p.Name
				e.PlayerGrade = p.Grade
			}
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].StartTime < entries[j].StartTime })
	return entries, nil
}
