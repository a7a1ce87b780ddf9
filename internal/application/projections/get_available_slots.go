package projections

import (
	"context"
	"sort"
	"time"

	"courtside/internal/domain/coach"
	"courtside/internal/domain/slot"
)

// AvailableSlotStore defines the slot reads for the booking page.
type AvailableSlotStore interface {
	ListAvailableInRange(ctx context.Context, fromDate, toDate, locationID string) ([]slot.Slot, error)
}

// AvailableCoachStore defines the coach reads for the booking page.
type AvailableCoachStore interface {
	ListActive(ctx context.Context) ([]coach.Coach, error)
}

// GetAvailableSlotsInput filters the available slot listing.
type GetAvailableSlotsInput struct {
	FromDate   string // YYYY-MM-DD, inclusive; empty means today
	Days       int    // horizon; 0 defaults to 14
	LocationID string // empty means all locations
	CoachID    string // empty means all coaches
}

// GetAvailableSlotsDeps holds dependencies for the projection.
type GetAvailableSlotsDeps struct {
	SlotStore  AvailableSlotStore
	CoachStore AvailableCoachStore
	Now        func() time.Time
}

// SlotView is one bookable slot with the coach resolved for display.
type SlotView struct {
	ID         string `json:"id"`
	CoachID    string `json:"coach_id"`
	CoachName  string `json:"coach_name"`
	LocationID string `json:"location_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// DaySlots groups one day's bookable slots, ordered by start time.
type DaySlots struct {
	Date  string     `json:"date"`
	Slots []SlotView `json:"slots"`
}

// QueryGetAvailableSlots returns bookable slots grouped per day. Slots whose
// coach is inactive are hidden even if they are still in the pool.
// PRE: input dates are YYYY-MM-DD when set
// POST: Days are ordered ascending, slots within a day by start time
func QueryGetAvailableSlots(ctx context.Context, input GetAvailableSlotsInput, deps GetAvailableSlotsDeps) ([]DaySlots, error) {
	from := input.FromDate
	if from == "" {
		from = deps.Now().Format("2006-01-02")
	}
	days := input.Days
	if days <= 0 {
		days = 14
	}
	fromT, err := time.Parse("2006-01-02", from)
	if err != nil {
		return nil, slot.ErrInvalidDate
	}
	to := fromT.AddDate(0, 0, days).Format("2006-01-02")

	coaches, err := deps.CoachStore.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	for _, c := range coaches {
		names[c.ID] = c.Name
	}

	slots, err := deps.SlotStore.ListAvailableInRange(ctx, from, to, input.LocationID)
	if err != nil {
		return nil, err
	}

	byDate := map[string][]SlotView{}
	for _, s := range slots {
		name, active := names[s.CoachID]
		if !active {
			continue
		}
		if input.CoachID != "" && s.CoachID != input.CoachID {
			continue
		}
		byDate[s.Date] = append(byDate[s.Date], SlotView{
			ID:         s.ID,
			CoachID:    s.CoachID,
			CoachName:  name,
			LocationID: s.LocationID,
			Date:       s.Date,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
		})
	}

	var out []DaySlots
	for date, views := range byDate {
		sort.Slice(views, func(i, j int) bool {
			if views[i].StartTime != views[j].StartTime {
				return views[i].StartTime < views[j].StartTime
			}
			return views[i].CoachName < views[j].CoachName
		})
		out = append(out, DaySlots{Date: date, Slots: views})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
