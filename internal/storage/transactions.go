package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fishmarket/internal/core"
)

func deriveBalanceTx(ctx context.Context, tx *sql.Tx, kind core.EntityKind, id int64) (int64, error) {
	table, fk := txnTable(kind)
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(balance_change_cents), 0) FROM %s WHERE %s = ? AND status = 'completed'`,
		table, fk)

	var cents int64
	if err := tx.QueryRowContext(ctx, query, id).Scan(&cents); err != nil {
		return 0, fmt.Errorf("%w: derive balance: %v", core.ErrPersistence, err)
	}
	return cents, nil
}

func patchBalanceTx(ctx context.Context, tx *sql.Tx, kind core.EntityKind, id, cents int64) error {
	query := fmt.Sprintf(
		`UPDATE %s SET balance_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		entityTable(kind))
	if _, err := tx.ExecContext(ctx, query, cents, id); err != nil {
		return fmt.Errorf("%w: patch balance: %v", core.ErrPersistence, err)
	}
	return nil
}

func saleDelta(t *core.Transaction) summaryDelta {
	return summaryDelta{
		SalesCents: t.TotalAmount.Cents(),
		CashCents:  t.PaidAmount.Cents(),
		// outstanding grows when the balance change is negative
		OutstandingCents: -t.BalanceChange.Cents(),
		Count:            1,
	}
}

// RecordSale persists a fully computed sale: header, line items, cached
// balance and the day's rollup, all in one SQL transaction. On return the
// transaction carries its id, the customer name and the balance snapshot.
func (r *SQLiteRepository) RecordSale(ctx context.Context, t *core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var customerName string
		err := tx.QueryRowContext(ctx, `SELECT name FROM customers WHERE id = ?`, t.CustomerID).Scan(&customerName)
		if err == sql.ErrNoRows {
			return &core.NotFoundError{Entity: "customer", ID: t.CustomerID}
		}
		if err != nil {
			return fmt.Errorf("%w: lookup customer: %v", core.ErrPersistence, err)
		}
		t.CustomerName = customerName

		res, err := tx.ExecContext(ctx, `
			INSERT INTO transactions
				(customer_id, date, time, total_amount_cents, paid_amount_cents,
				 balance_change_cents, balance_after_cents, payment_status, notes, status)
			VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, 'completed')`,
			t.CustomerID, t.Date.String(), t.Time,
			t.TotalAmount.Cents(), t.PaidAmount.Cents(), t.BalanceChange.Cents(),
			string(t.PaymentStatus), t.Notes)
		if err != nil {
			return fmt.Errorf("%w: insert sale: %v", core.ErrPersistence, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: last insert id: %v", core.ErrPersistence, err)
		}
		t.ID = id
		t.Status = core.TxnCompleted

		for i := range t.Items {
			item := &t.Items[i]
			ires, err := tx.ExecContext(ctx, `
				INSERT INTO transaction_items
					(transaction_id, fish_category_id, fish_name, weight_kg, price_per_unit_cents, subtotal_cents)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, item.FishCategoryID, item.FishName, item.WeightKg,
				item.PricePerUnit.Cents(), item.Subtotal.Cents())
			if err != nil {
				return fmt.Errorf("%w: insert sale item: %v", core.ErrPersistence, err)
			}
			item.TransactionID = id
			item.ID, _ = ires.LastInsertId()
		}

		derived, err := deriveBalanceTx(ctx, tx, core.EntityCustomer, t.CustomerID)
		if err != nil {
			return err
		}
		t.BalanceAfter = core.MoneyFromCents(derived)
		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET balance_after_cents = ? WHERE id = ?`, derived, id); err != nil {
			return fmt.Errorf("%w: set balance snapshot: %v", core.ErrPersistence, err)
		}
		if err := patchBalanceTx(ctx, tx, core.EntityCustomer, t.CustomerID, derived); err != nil {
			return err
		}

		return r.applyDailyDelta(ctx, tx, core.EntityCustomer, t.Date.String(), saleDelta(t))
	})
}

func scanSaleHeader(row interface{ Scan(...any) error }) (*core.Transaction, error) {
	var (
		t                              core.Transaction
		dateStr, createdAt             string
		totalC, paidC, changeC, afterC int64
		paymentStatus, status          string
	)
	err := row.Scan(&t.ID, &t.CustomerID, &t.CustomerName, &dateStr, &t.Time,
		&totalC, &paidC, &changeC, &afterC, &paymentStatus, &t.Notes, &status, &createdAt)
	if err != nil {
		return nil, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad sale date %q", core.ErrPersistence, dateStr)
	}
	t.Date = date
	t.TotalAmount = core.MoneyFromCents(totalC)
	t.PaidAmount = core.MoneyFromCents(paidC)
	t.BalanceChange = core.MoneyFromCents(changeC)
	t.BalanceAfter = core.MoneyFromCents(afterC)
	t.PaymentStatus = core.PaymentStatus(paymentStatus)
	t.Status = core.TxnStatus(status)
	t.CreatedAt = parseTimestamp(createdAt)
	return &t, nil
}

const saleColumns = `t.id, t.customer_id, c.name, t.date, t.time,
	t.total_amount_cents, t.paid_amount_cents, t.balance_change_cents, t.balance_after_cents,
	t.payment_status, t.notes, t.status, t.created_at`

// GetSale loads one sale with its line items.
func (r *SQLiteRepository) GetSale(ctx context.Context, id int64) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM transactions t JOIN customers c ON c.id = t.customer_id WHERE t.id = ?`, saleColumns), id)
	t, err := scanSaleHeader(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "sale", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get sale: %v", core.ErrPersistence, err)
	}

	items, err := r.saleItems(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (r *SQLiteRepository) saleItems(ctx context.Context, txnID int64) ([]core.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, fish_category_id, fish_name, weight_kg, price_per_unit_cents, subtotal_cents
		FROM transaction_items WHERE transaction_id = ? ORDER BY id`, txnID)
	if err != nil {
		return nil, fmt.Errorf("%w: load sale items: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var items []core.LineItem
	for rows.Next() {
		var (
			item              core.LineItem
			priceC, subtotalC int64
		)
		if err := rows.Scan(&item.ID, &item.TransactionID, &item.FishCategoryID,
			&item.FishName, &item.WeightKg, &priceC, &subtotalC); err != nil {
			return nil, fmt.Errorf("%w: scan sale item: %v", core.ErrPersistence, err)
		}
		item.PricePerUnit = core.MoneyFromCents(priceC)
		item.Subtotal = core.MoneyFromCents(subtotalC)
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaleFilter narrows ListSales. Zero values mean no filter.
type SaleFilter struct {
	CustomerID int64
	Date       string
}

// ListSales pages sale headers, newest first. Line items are not loaded.
func (r *SQLiteRepository) ListSales(ctx context.Context, f SaleFilter, offset, limit int) (core.Paginated[core.Transaction], error) {
	var page core.Paginated[core.Transaction]
	offset, limit = core.ClampPageBounds(offset, limit)

	where := `WHERE 1=1`
	args := []any{}
	if f.CustomerID > 0 {
		where += ` AND t.customer_id = ?`
		args = append(args, f.CustomerID)
	}
	if f.Date != "" {
		where += ` AND t.date = ?`
		args = append(args, f.Date)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions t `+where, args...).Scan(&total); err != nil {
		return page, fmt.Errorf("%w: count sales: %v", core.ErrPersistence, err)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM transactions t JOIN customers c ON c.id = t.customer_id
		 %s ORDER BY t.date DESC, t.id DESC LIMIT ? OFFSET ?`, saleColumns, where),
		append(args, limit, offset)...)
	if err != nil {
		return page, fmt.Errorf("%w: list sales: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanSaleHeader(rows)
		if err != nil {
			return page, fmt.Errorf("%w: scan sale: %v", core.ErrPersistence, err)
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("%w: iterate sales: %v", core.ErrPersistence, err)
	}

	page.Items = items
	page.Total = total
	page.Offset = offset
	page.Limit = limit
	return page, nil
}

// UpdateSale applies a recomputed sale in place: new money fields, optional
// replacement line items, the balance delta and the day's summary deltas,
// all atomically. The balance_after snapshot of the original receipt is
// left untouched.
func (r *SQLiteRepository) UpdateSale(ctx context.Context, t *core.Transaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			oldTotalC, oldPaidC, oldChangeC int64
			status, dateStr                 string
			customerID                      int64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT customer_id, date, total_amount_cents, paid_amount_cents, balance_change_cents, status
			FROM transactions WHERE id = ?`, t.ID).
			Scan(&customerID, &dateStr, &oldTotalC, &oldPaidC, &oldChangeC, &status)
		if err == sql.ErrNoRows {
			return &core.NotFoundError{Entity: "sale", ID: t.ID}
		}
		if err != nil {
			return fmt.Errorf("%w: load sale for update: %v", core.ErrPersistence, err)
		}
		if status == string(core.TxnVoided) {
			return core.Invalid("status", "cannot edit a voided transaction")
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions SET total_amount_cents = ?, paid_amount_cents = ?,
				balance_change_cents = ?, payment_status = ?, notes = ?
			WHERE id = ?`,
			t.TotalAmount.Cents(), t.PaidAmount.Cents(), t.BalanceChange.Cents(),
			string(t.PaymentStatus), t.Notes, t.ID); err != nil {
			return fmt.Errorf("%w: update sale: %v", core.ErrPersistence, err)
		}

		if t.Items != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM transaction_items WHERE transaction_id = ?`, t.ID); err != nil {
				return fmt.Errorf("%w: clear sale items: %v", core.ErrPersistence, err)
			}
			for i := range t.Items {
				item := &t.Items[i]
				ires, err := tx.ExecContext(ctx, `
					INSERT INTO transaction_items
						(transaction_id, fish_category_id, fish_name, weight_kg, price_per_unit_cents, subtotal_cents)
					VALUES (?, ?, ?, ?, ?, ?)`,
					t.ID, item.FishCategoryID, item.FishName, item.WeightKg,
					item.PricePerUnit.Cents(), item.Subtotal.Cents())
				if err != nil {
					return fmt.Errorf("%w: insert sale item: %v", core.ErrPersistence, err)
				}
				item.TransactionID = t.ID
				item.ID, _ = ires.LastInsertId()
			}
		}

		derived, err := deriveBalanceTx(ctx, tx, core.EntityCustomer, customerID)
		if err != nil {
			return err
		}
		if err := patchBalanceTx(ctx, tx, core.EntityCustomer, customerID, derived); err != nil {
			return err
		}

		delta := summaryDelta{
			SalesCents:       t.TotalAmount.Cents() - oldTotalC,
			CashCents:        t.PaidAmount.Cents() - oldPaidC,
			OutstandingCents: -(t.BalanceChange.Cents() - oldChangeC),
		}
		return r.applyDailyDelta(ctx, tx, core.EntityCustomer, dateStr, delta)
	})
}

// VoidSale reverses the sale's balance and summary contributions and marks
// the row voided. The row and its items are kept for the audit trail.
func (r *SQLiteRepository) VoidSale(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			customerID, totalC, paidC, changeC int64
			status, dateStr                    string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT customer_id, date, total_amount_cents, paid_amount_cents, balance_change_cents, status
			FROM transactions WHERE id = ?`, id).
			Scan(&customerID, &dateStr, &totalC, &paidC, &changeC, &status)
		if err == sql.ErrNoRows {
			return &core.NotFoundError{Entity: "sale", ID: id}
		}
		if err != nil {
			return fmt.Errorf("%w: load sale for void: %v", core.ErrPersistence, err)
		}
		if status == string(core.TxnVoided) {
			return core.Invalid("status", "transaction is already voided")
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET status = 'voided' WHERE id = ?`, id); err != nil {
			return fmt.Errorf("%w: void sale: %v", core.ErrPersistence, err)
		}

		derived, err := deriveBalanceTx(ctx, tx, core.EntityCustomer, customerID)
		if err != nil {
			return err
		}
		if err := patchBalanceTx(ctx, tx, core.EntityCustomer, customerID, derived); err != nil {
			return err
		}

		reversal := summaryDelta{
			SalesCents:       totalC,
			CashCents:        paidC,
			OutstandingCents: -changeC,
			Count:            1,
		}.negated()
		return r.applyDailyDelta(ctx, tx, core.EntityCustomer, dateStr, reversal)
	})
}
