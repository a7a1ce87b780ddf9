package projections

import (
	"context"

	"courtside/internal/domain/audit"
	"courtside/internal/domain/slot"
)

// DashboardSlotStore defines the slot reads for the admin dashboard.
type DashboardSlotStore interface {
	CountByStatus(ctx context.Context) (map[slot.Status]int, error)
}

// DashboardPaymentStore defines the payment reads for the admin dashboard.
type DashboardPaymentStore interface {
	SumSucceeded(ctx context.Context) (int, error)
}

// DashboardAuditStore defines the audit reads for the admin dashboard.
type DashboardAuditStore interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// GetDashboardDeps holds dependencies for the projection.
type GetDashboardDeps struct {
	SlotStore    DashboardSlotStore
	PaymentStore DashboardPaymentStore
	AuditStore   DashboardAuditStore
}

// Dashboard is the admin landing view.
type Dashboard struct {
	Available     int           `json:"available"`
	Pending       int           `json:"pending"`
	Booked        int           `json:"booked"`
	Cancelled     int           `json:"cancelled"`
	Completed     int           `json:"completed"`
	RevenueCents  int           `json:"revenue_cents"`
	RecentActions []audit.Event `json:"recent_actions"`
}

// QueryGetDashboard aggregates slot counts, takings, and the latest audit
// activity into one view.
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (Dashboard, error) {
	counts, err := deps.SlotStore.CountByStatus(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	revenue, err := deps.PaymentStore.SumSucceeded(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := deps.AuditStore.ListRecent(ctx, 20)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Available:     counts[slot.StatusAvailable],
		Pending:       counts[slot.StatusPending],
		Booked:        counts[slot.StatusBooked],
		Cancelled:     counts[slot.StatusCancelled],
		Completed:     counts[slot.StatusCompleted],
		RevenueCents:  revenue,
		RecentActions: recent,
	}, nil
}
