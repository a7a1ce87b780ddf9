package projections

import (
	"context"
	"sort"
	"time"

	"courtside/internal/domain/coach"
	"courtside/internal/domain/slot"
)

// PlayerBookingSlotStore defines the slot reads for a player's bookings page.
type PlayerBookingSlotStore interface {
	ListByPlayer(ctx context.Context, playerID string) ([]slot.Slot, error)
}

// PlayerBookingCoachStore resolves coaches for the bookings page.
type PlayerBookingCoachStore interface {
	GetByID(ctx context.Context, id string) (coach.Coach, error)
}

// GetPlayerBookingsInput selects one player.
type GetPlayerBookingsInput struct {
	PlayerID string
}

// GetPlayerBookingsDeps holds dependencies for the projection.
type GetPlayerBookingsDeps struct {
	SlotStore  PlayerBookingSlotStore
	CoachStore PlayerBookingCoachStore
	Now        func() time.Time
}

// BookingView is one of a player's bookings with the coach resolved.
type BookingView struct {
	SlotID    string `json:"slot_id"`
	CoachID   string `json:"coach_id"`
	CoachName string `json:"coach_name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

// PlayerBookings splits a player's bookings around now. Pending and booked
// sessions that have not started yet are upcoming; everything else, including
// cancelled and completed sessions, is history.
type PlayerBookings struct {
	Upcoming []BookingView `json:"upcoming"`
	Past     []BookingView `json:"past"`
}

// QueryGetPlayerBookings returns a player's bookings, upcoming first by start
// time, past newest first.
func QueryGetPlayerBookings(ctx context.Context, input GetPlayerBookingsInput, deps GetPlayerBookingsDeps) (PlayerBookings, error) {
	slots, err := deps.SlotStore.ListByPlayer(ctx, input.PlayerID)
	if err != nil {
		return PlayerBookings{}, err
	}

	now := deps.Now()
	names := map[string]string{}
	var out PlayerBookings
	for _, s := range slots {
		name, ok := names[s.CoachID]
		if !ok {
			if c, err := deps.CoachStore.GetByID(ctx, s.CoachID); err == nil {
				name = c.Name
			}
			names[s.CoachID] = name
		}
		v := BookingView{
			SlotID:    s.ID,
			CoachID:   s.CoachID,
			CoachName: name,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Status:    string(s.Status),
		}
		startsAt, err := s.StartsAt(now.Location())
		upcoming := s.IsActive() && err == nil && startsAt.After(now)
		if upcoming {
			out.Upcoming = append(out.Upcoming, v)
		} else {
			out.Past = append(out.Past, v)
		}
	}

	sort.Slice(out.Upcoming, func(i, j int) bool {
		return bookingSortKey(out.Upcoming[i]) < bookingSortKey(out.Upcoming[j])
	})
	sort.Slice(out.Past, func(i, j int) bool {
		return bookingSortKey(out.Past[i]) > bookingSortKey(out.Past[j])
	})
	return out, nil
}

func bookingSortKey(v BookingView) string {
	return v.Date + " " + v.StartTime
}
