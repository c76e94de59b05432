package ledger

import (
	"context"

	"fishmarket/internal/core"
)

// GetDailySummary returns one day's rollup for the given stream. A quiet
// day yields a zeroed summary.
func (s *Service) GetDailySummary(ctx context.Context, kind core.EntityKind, date core.Date) (*core.DailySummary, error) {
	if err := date.Validate(); err != nil {
		return nil, err
	}
	return s.store.GetDailySummary(ctx, kind, date)
}

// GetDailySummaryRange returns rollups between start and end inclusive,
// most recent first.
func (s *Service) GetDailySummaryRange(ctx context.Context, kind core.EntityKind, start, end core.Date) ([]core.DailySummary, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	if err := end.Validate(); err != nil {
		return nil, err
	}
	if end.Before(start.Time) {
		return nil, core.Invalid("range", "end date is before start date")
	}
	return s.store.GetDailySummaryRange(ctx, kind, start, end)
}

// GetDashboardStats assembles the landing-view aggregates for today.
func (s *Service) GetDashboardStats(ctx context.Context) (*core.DashboardStats, error) {
	return s.store.GetDashboardStats(ctx, core.Today())
}
