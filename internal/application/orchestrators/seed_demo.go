package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/availability"
	"courtside/internal/domain/coach"
	"courtside/internal/domain/location"

	"github.com/google/uuid"
)

// LocationStoreForSeed defines the store interface needed by SeedDemo.
type LocationStoreForSeed interface {
	Save(ctx context.Context, l location.Location) error
	List(ctx context.Context) ([]location.Location, error)
}

// CoachStoreForSeed defines the store interface needed by SeedDemo.
type CoachStoreForSeed interface {
	Save(ctx context.Context, c coach.Coach) error
}

// WindowStoreForSeed defines the store interface needed by SeedDemo.
type WindowStoreForSeed interface {
	Save(ctx context.Context, w availability.Window) error
}

// SeedDemoDeps holds dependencies for SeedDemo.
type SeedDemoDeps struct {
	AccountStore  AccountStoreForCreate
	LocationStore LocationStoreForSeed
	CoachStore    CoachStoreForSeed
	WindowStore   WindowStoreForSeed
}

// ExecuteSeedDemo creates a starter location, two coaches with accounts, and
// their weekly availability windows if no locations exist yet. Development
// convenience only; a seeded database never reseeds.
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) error {
	existing, err := deps.LocationStore.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil // Already seeded
	}

	locID := uuid.New().String()
	loc := location.Location{
		ID:      locID,
		Name:    "Centre Court Club",
		Address: "14 Birdwood Ave, Wellington",
		Courts:  4,
	}
	if err := deps.LocationStore.Save(ctx, loc); err != nil {
		return err
	}

	coaches := []struct {
		Name  string
		Email string
		Bio   string
		Rate  int
	}{
		{
			Name:  "Mereana Walsh",
			Email: "mereana@courtsideacademy.nz",
			Bio:   "Former national squad. Specialises in **movement** and front-court attack.",
			Rate:  9000,
		},
		{
			Name:  "Dev Patel",
			Email: "dev@courtsideacademy.nz",
			Bio:   "A-grade club player, ten years coaching juniors and beginners.",
			Rate:  7000,
		},
	}

	for i, c := range coaches {
		accountID, err := ExecuteCreateAccount(ctx, CreateAccountInput{
			Email:    c.Email,
			Password: "squash and stretch",
			Role:     account.RoleCoach,
		}, CreateAccountDeps{
			AccountStore: deps.AccountStore,
			GenerateID:   func() string { return uuid.New().String() },
			Now:          time.Now,
		})
		if err != nil {
			return err
		}

		coachID := uuid.New().String()
		profile := coach.Coach{
			ID:         coachID,
			AccountID:  accountID,
			Name:       c.Name,
			Email:      c.Email,
			Bio:        c.Bio,
			HourlyRate: c.Rate,
			Status:     coach.StatusActive,
		}
		if err := deps.CoachStore.Save(ctx, profile); err != nil {
			return err
		}

		// Weekday evenings for the first coach, weekend mornings for the second.
		windows := []availability.Window{
			{Day: availability.Monday, StartTime: "16:00", EndTime: "20:00"},
			{Day: availability.Wednesday, StartTime: "16:00", EndTime: "20:00"},
			{Day: availability.Friday, StartTime: "16:00", EndTime: "19:00"},
		}
		if i == 1 {
			windows = []availability.Window{
				{Day: availability.Saturday, StartTime: "09:00", EndTime: "13:00"},
				{Day: availability.Sunday, StartTime: "09:00", EndTime: "12:00"},
			}
		}
		for _, w := range windows {
			w.ID = uuid.New().String()
			w.CoachID = coachID
			w.LocationID = locID
			w.SessionMinutes = 45
			if err := deps.WindowStore.Save(ctx, w); err != nil {
				return err
			}
		}
	}

	slog.Info("seed_event", "event", "demo_seeded", "location_id", locID, "coaches", len(coaches))
	return nil
}
