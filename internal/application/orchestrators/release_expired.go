package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courtside/internal/domain/slot"
)

// ExpirySlotStore defines the slot store interface for the expiry sweep.
type ExpirySlotStore interface {
	ListPendingHeldBefore(ctx context.Context, cutoff time.Time) ([]slot.Slot, error)
	ReleaseHold(ctx context.Context, id string) error
}

// ReleaseExpiredDeps holds dependencies for ReleaseExpired.
type ReleaseExpiredDeps struct {
	SlotStore ExpirySlotStore
	HoldTTL   time.Duration
	Now       func() time.Time
}

// ExecuteReleaseExpired returns every pending hold older than HoldTTL to the
// available pool. A hold that was confirmed between the listing and the
// release loses the race inside ReleaseHold and is simply skipped.
// PRE: HoldTTL > 0
// POST: No pending hold older than HoldTTL remains; returns released count
func ExecuteReleaseExpired(ctx context.Context, deps ReleaseExpiredDeps) (int, error) {
	now := deps.Now()
	cutoff := now.Add(-deps.HoldTTL)

	expired, err := deps.SlotStore.ListPendingHeldBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired holds: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var released int
	for _, s := range expired {
		if !s.HoldExpired(now, deps.HoldTTL) {
			continue
		}
		if err := deps.SlotStore.ReleaseHold(ctx, s.ID); err != nil {
			slog.Error("expiry_release_failed", "slot_id", s.ID, "error", err)
			continue
		}
		released++
		slog.Info("booking_event", "event", "hold_expired", "slot_id", s.ID,
			"player_id", s.PlayerID, "held_at", s.HeldAt, "date", s.Date, "start", s.StartTime)
	}

	if released > 0 {
		slog.Info("expiry_sweep_complete", "expired", len(expired), "released", released)
	}
	return released, nil
}

// ExpirySweepConfig holds configuration for the expiry sweep scheduler.
type ExpirySweepConfig struct {
	Interval time.Duration
	HoldTTL  time.Duration
	Enabled  bool
}

// StartExpirySweep starts a background goroutine that periodically releases
// expired pending holds.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started, returns cancel function
func StartExpirySweep(ctx context.Context, store ExpirySlotStore, cfg ExpirySweepConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deps := ReleaseExpiredDeps{SlotStore: store, HoldTTL: cfg.HoldTTL, Now: time.Now}
				if _, err := ExecuteReleaseExpired(ctx, deps); err != nil {
					slog.Error("expiry_sweep_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
