package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fishmarket/internal/core"
)

// summaryDelta is one transaction's contribution to its day's rollup.
// All values are signed so a void applies the same delta negated.
type summaryDelta struct {
	SalesCents       int64
	CashCents        int64
	OutstandingCents int64
	Count            int64
}

func (d summaryDelta) negated() summaryDelta {
	return summaryDelta{
		SalesCents:       -d.SalesCents,
		CashCents:        -d.CashCents,
		OutstandingCents: -d.OutstandingCents,
		Count:            -d.Count,
	}
}

func summaryTable(kind core.EntityKind) (table, salesCol string) {
	if kind == core.EntityFarmer {
		return "farmer_daily_summary", "total_purchases_cents"
	}
	return "daily_summary", "total_sales_cents"
}

// applyDailyDelta upserts one day's rollup row inside an open transaction.
func (r *SQLiteRepository) applyDailyDelta(ctx context.Context, tx *sql.Tx, kind core.EntityKind, date string, d summaryDelta) error {
	table, salesCol := summaryTable(kind)

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (date, %[2]s, total_cash_cents, total_outstanding_cents, transactions_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			%[2]s = %[2]s + excluded.%[2]s,
			total_cash_cents = total_cash_cents + excluded.total_cash_cents,
			total_outstanding_cents = total_outstanding_cents + excluded.total_outstanding_cents,
			transactions_count = transactions_count + excluded.transactions_count`,
		table, salesCol)

	if _, err := tx.ExecContext(ctx, query, date, d.SalesCents, d.CashCents, d.OutstandingCents, d.Count); err != nil {
		return fmt.Errorf("%w: apply daily delta: %v", core.ErrPersistence, err)
	}

	if r.clampOutstanding {
		clamp := fmt.Sprintf(`UPDATE %s SET total_outstanding_cents = max(total_outstanding_cents, 0) WHERE date = ?`, table)
		if _, err := tx.ExecContext(ctx, clamp, date); err != nil {
			return fmt.Errorf("%w: clamp daily outstanding: %v", core.ErrPersistence, err)
		}
	}

	return nil
}

// GetDailySummary returns the rollup for one date. A date with no activity
// yields a zeroed summary, not an error.
func (r *SQLiteRepository) GetDailySummary(ctx context.Context, kind core.EntityKind, date core.Date) (*core.DailySummary, error) {
	table, salesCol := summaryTable(kind)

	var salesCents, cashCents, outstandingCents, count int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s, total_cash_cents, total_outstanding_cents, transactions_count FROM %s WHERE date = ?`, salesCol, table),
		date.String()).Scan(&salesCents, &cashCents, &outstandingCents, &count)
	if err == sql.ErrNoRows {
		return &core.DailySummary{Date: date}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get daily summary: %v", core.ErrPersistence, err)
	}

	return &core.DailySummary{
		Date:                   date,
		TotalSales:             core.MoneyFromCents(salesCents),
		TotalCashReceived:      core.MoneyFromCents(cashCents),
		TotalOutstandingChange: core.MoneyFromCents(outstandingCents),
		TransactionsCount:      count,
	}, nil
}

// GetDailySummaryRange returns rollups between start and end inclusive,
// most recent first. Dates with no activity are omitted.
func (r *SQLiteRepository) GetDailySummaryRange(ctx context.Context, kind core.EntityKind, start, end core.Date) ([]core.DailySummary, error) {
	table, salesCol := summaryTable(kind)

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT date, %s, total_cash_cents, total_outstanding_cents, transactions_count
			FROM %s WHERE date >= ? AND date <= ? ORDER BY date DESC`, salesCol, table),
		start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("%w: get daily summary range: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var summaries []core.DailySummary
	for rows.Next() {
		var (
			dateStr                                 string
			salesCents, cashCents, outstanding, cnt int64
		)
		if err := rows.Scan(&dateStr, &salesCents, &cashCents, &outstanding, &cnt); err != nil {
			return nil, fmt.Errorf("%w: scan daily summary: %v", core.ErrPersistence, err)
		}
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad summary date %q", core.ErrPersistence, dateStr)
		}
		summaries = append(summaries, core.DailySummary{
			Date:                   date,
			TotalSales:             core.MoneyFromCents(salesCents),
			TotalCashReceived:      core.MoneyFromCents(cashCents),
			TotalOutstandingChange: core.MoneyFromCents(outstanding),
			TransactionsCount:      cnt,
		})
	}
	return summaries, rows.Err()
}
