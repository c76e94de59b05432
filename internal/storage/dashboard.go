package storage

import (
	"context"
	"fmt"

	"fishmarket/internal/core"
)

// GetDashboardStats assembles the landing-view aggregates. Pending and owed
// figures come from derived balances over transaction history, never from
// the cached balance columns.
func (r *SQLiteRepository) GetDashboardStats(ctx context.Context, today core.Date) (*core.DashboardStats, error) {
	stats := &core.DashboardStats{}

	todaySummary, err := r.GetDailySummary(ctx, core.EntityCustomer, today)
	if err != nil {
		return nil, err
	}
	stats.TodaySales = todaySummary.TotalSales
	stats.TodayCash = todaySummary.TotalCashReceived
	stats.TodayTransactions = todaySummary.TransactionsCount

	// A negative derived balance means the customer owes the business.
	pendingQuery := `
		SELECT COUNT(*), COALESCE(SUM(-derived), 0) FROM (
			SELECT SUM(balance_change_cents) AS derived
			FROM transactions WHERE status = 'completed'
			GROUP BY customer_id
			HAVING derived < 0
		)`
	var pendingTotalCents int64
	if err := r.db.QueryRowContext(ctx, pendingQuery).Scan(&stats.PendingCustomersCount, &pendingTotalCents); err != nil {
		return nil, fmt.Errorf("%w: pending customers: %v", core.ErrPersistence, err)
	}
	stats.PendingCustomersTotal = core.MoneyFromCents(pendingTotalCents)

	// A negative derived balance means the business owes the farmer.
	owedQuery := `
		SELECT COUNT(*), COALESCE(SUM(-derived), 0) FROM (
			SELECT SUM(balance_change_cents) AS derived
			FROM farmer_transactions WHERE status = 'completed'
			GROUP BY farmer_id
			HAVING derived < 0
		)`
	var owedTotalCents int64
	if err := r.db.QueryRowContext(ctx, owedQuery).Scan(&stats.OwedFarmersCount, &owedTotalCents); err != nil {
		return nil, fmt.Errorf("%w: owed farmers: %v", core.ErrPersistence, err)
	}
	stats.OwedFarmersTotal = core.MoneyFromCents(owedTotalCents)

	counts := []struct {
		query string
		dst   *int64
	}{
		{`SELECT COUNT(*) FROM customers`, &stats.TotalCustomers},
		{`SELECT COUNT(*) FROM farmers`, &stats.TotalFarmers},
		{`SELECT COUNT(*) FROM fish_categories WHERE active = 1`, &stats.ActiveFishCategories},
	}
	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("%w: dashboard counts: %v", core.ErrPersistence, err)
		}
	}

	return stats, nil
}
