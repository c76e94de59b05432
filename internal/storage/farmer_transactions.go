package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fishmarket/internal/core"
)

func purchaseDelta(t *core.FarmerTransaction) summaryDelta {
	return summaryDelta{
		SalesCents:       t.TotalAmount.Cents(),
		CashCents:        t.PaidAmount.Cents(),
		OutstandingCents: -t.BalanceChange.Cents(),
		Count:            1,
	}
}

// RecordPurchase persists a fully computed farmer purchase. When the named
// fish category does not exist yet it is created (or its reference price
// refreshed) inside the same SQL transaction as the purchase itself.
func (r *SQLiteRepository) RecordPurchase(ctx context.Context, t *core.FarmerTransaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var farmerName string
		err := tx.QueryRowContext(ctx, `SELECT name FROM farmers WHERE id = ?`, t.FarmerID).Scan(&farmerName)
		if err == sql.ErrNoRows {
			return &core.NotFoundError{Entity: "farmer", ID: t.FarmerID}
		}
		if err != nil {
			return fmt.Errorf("%w: lookup farmer: %v", core.ErrPersistence, err)
		}
		t.FarmerName = farmerName

		categoryID, err := upsertCategoryTx(ctx, tx, t.FishName, t.PricePerUnit.Cents())
		if err != nil {
			return err
		}
		t.FishCategoryID = categoryID

		res, err := tx.ExecContext(ctx, `
			INSERT INTO farmer_transactions
				(farmer_id, date, time, fish_category_id, fish_name, weight_kg,
				 price_per_unit_cents, fish_value_cents, commission_percent, commission_cents,
				 handling_cents, ice_cents, labour_cents, extra_cents,
				 total_amount_cents, paid_amount_cents, balance_change_cents, balance_after_cents,
				 payment_status, notes, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 'completed')`,
			t.FarmerID, t.Date.String(), t.Time, categoryID, t.FishName, t.WeightKg,
			t.PricePerUnit.Cents(), t.FishValue.Cents(), t.CommissionPercent, t.Commission.Cents(),
			t.HandlingCharges.Cents(), t.IceCharges.Cents(), t.LabourCharges.Cents(), t.ExtraCharges.Cents(),
			t.TotalAmount.Cents(), t.PaidAmount.Cents(), t.BalanceChange.Cents(),
			string(t.PaymentStatus), t.Notes)
		if err != nil {
			return fmt.Errorf("%w: insert purchase: %v", core.ErrPersistence, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: last insert id: %v", core.ErrPersistence, err)
		}
		t.ID = id
		t.Status = core.TxnCompleted

		derived, err := deriveBalanceTx(ctx, tx, core.EntityFarmer, t.FarmerID)
		if err != nil {
			return err
		}
		t.BalanceAfter = core.MoneyFromCents(derived)
		if _, err := tx.ExecContext(ctx,
			`UPDATE farmer_transactions SET balance_after_cents = ? WHERE id = ?`, derived, id); err != nil {
			return fmt.Errorf("%w: set balance snapshot: %v", core.ErrPersistence, err)
		}
		if err := patchBalanceTx(ctx, tx, core.EntityFarmer, t.FarmerID, derived); err != nil {
			return err
		}

		return r.applyDailyDelta(ctx, tx, core.EntityFarmer, t.Date.String(), purchaseDelta(t))
	})
}

const purchaseColumns = `t.id, t.farmer_id, f.name, t.date, t.time, t.fish_category_id, t.fish_name,
	t.weight_kg, t.price_per_unit_cents, t.fish_value_cents, t.commission_percent, t.commission_cents,
	t.handling_cents, t.ice_cents, t.labour_cents, t.extra_cents,
	t.total_amount_cents, t.paid_amount_cents, t.balance_change_cents, t.balance_after_cents,
	t.payment_status, t.notes, t.status, t.created_at`

func scanPurchase(row interface{ Scan(...any) error }) (*core.FarmerTransaction, error) {
	var (
		t                     core.FarmerTransaction
		dateStr, createdAt    string
		paymentStatus, status string

		priceC, valueC, commissionC      int64
		handlingC, iceC, labourC, extraC int64
		totalC, paidC, changeC, afterC   int64
	)
	err := row.Scan(&t.ID, &t.FarmerID, &t.FarmerName, &dateStr, &t.Time, &t.FishCategoryID, &t.FishName,
		&t.WeightKg, &priceC, &valueC, &t.CommissionPercent, &commissionC,
		&handlingC, &iceC, &labourC, &extraC,
		&totalC, &paidC, &changeC, &afterC,
		&paymentStatus, &t.Notes, &status, &createdAt)
	if err != nil {
		return nil, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad purchase date %q", core.ErrPersistence, dateStr)
	}
	t.Date = date
	t.PricePerUnit = core.MoneyFromCents(priceC)
	t.FishValue = core.MoneyFromCents(valueC)
	t.Commission = core.MoneyFromCents(commissionC)
	t.HandlingCharges = core.MoneyFromCents(handlingC)
	t.IceCharges = core.MoneyFromCents(iceC)
	t.LabourCharges = core.MoneyFromCents(labourC)
	t.ExtraCharges = core.MoneyFromCents(extraC)
	t.TotalAmount = core.MoneyFromCents(totalC)
	t.PaidAmount = core.MoneyFromCents(paidC)
	t.BalanceChange = core.MoneyFromCents(changeC)
	t.BalanceAfter = core.MoneyFromCents(afterC)
	t.PaymentStatus = core.PaymentStatus(paymentStatus)
	t.Status = core.TxnStatus(status)
	t.CreatedAt = parseTimestamp(createdAt)
	return &t, nil
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, id int64) (*core.FarmerTransaction, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT %s FROM farmer_transactions t JOIN farmers f ON f.id = t.farmer_id WHERE t.id = ?`, purchaseColumns), id)
	t, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "purchase", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get purchase: %v", core.ErrPersistence, err)
	}
	return t, nil
}

// PurchaseFilter narrows ListPurchases. Zero values mean no filter.
type PurchaseFilter struct {
	FarmerID int64
	Date     string
}

// ListPurchases pages purchase rows, newest first.
func (r *SQLiteRepository) ListPurchases(ctx context.Context, f PurchaseFilter, offset, limit int) (core.Paginated[core.FarmerTransaction], error) {
	var page core.Paginated[core.FarmerTransaction]
	offset, limit = core.ClampPageBounds(offset, limit)

	where := `WHERE 1=1`
	args := []any{}
	if f.FarmerID > 0 {
		where += ` AND t.farmer_id = ?`
		args = append(args, f.FarmerID)
	}
	if f.Date != "" {
		where += ` AND t.date = ?`
		args = append(args, f.Date)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM farmer_transactions t `+where, args...).Scan(&total); err != nil {
		return page, fmt.Errorf("%w: count purchases: %v", core.ErrPersistence, err)
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM farmer_transactions t JOIN farmers f ON f.id = t.farmer_id
		 %s ORDER BY t.date DESC, t.id DESC LIMIT ? OFFSET ?`, purchaseColumns, where),
		append(args, limit, offset)...)
	if err != nil {
		return page, fmt.Errorf("%w: list purchases: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var items []core.FarmerTransaction
	for rows.Next() {
		t, err := scanPurchase(rows)
		if err != nil {
			return page, fmt.Errorf("%w: scan purchase: %v", core.ErrPersistence, err)
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("%w: iterate purchases: %v", core.ErrPersistence, err)
	}

	page.Items = items
	page.Total = total
	page.Offset = offset
	page.Limit = limit
	return page, nil
}

// UpdatePurchase applies a recomputed purchase: new paid amount and money
// fields, the balance delta and the day's summary deltas, atomically.
func (r *SQLiteRepository) UpdatePurchase(ctx context.Context, t *core.FarmerTransaction) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			oldTotalC, oldPaidC, oldChangeC int64
			status, dateStr                 string
			farmerID                        int64
		)
		err := tx.QueryRowContext(ctx, `
			SELECT farmer_id, date, total_amount_cents, paid_amount_cents, balance_change_cents, status
			FROM farmer_transactions WHERE id = ?`, t.ID).
			Scan(&farmerID, &dateStr, &oldTotalC, &oldPaidC, &oldChangeC, &status)
		if err == sql.ErrNoRows {
			return &core.NotFoundError{Entity: "purchase", ID: t.ID}
		}
		if err != nil {
			return fmt.Errorf("%w: load purchase for update: %v", core.ErrPersistence, err)
		}
		if status == string(core.TxnVoided) {
			return core.Invalid("status", "cannot edit a voided transaction")
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE farmer_transactions SET total_amount_cents = ?, paid_amount_cents = ?,
				balance_change_cents = ?, payment_status = ?, notes = ?
			WHERE id = ?`,
			t.TotalAmount.Cents(), t.PaidAmount.Cents(), t.BalanceChange.Cents(),
			string(t.PaymentStatus), t.Notes, t.ID); err != nil {
			return fmt.Errorf("%w: update purchase: %v", core.ErrPersistence, err)
		}

		derived, err := deriveBalanceTx(ctx, tx, core.EntityFarmer, farmerID)
		if err != nil {
			return err
		}
		if err := patchBalanceTx(ctx, tx, core.EntityFarmer, farmerID, derived); err != nil {
			return err
		}

		delta := summaryDelta{
			SalesCents:       t.TotalAmount.Cents() - oldTotalC,
			CashCents:        t.PaidAmount.Cents() - oldPaidC,
			OutstandingCents: -(t.BalanceChange.Cents() - oldChangeC),
		}
		return r.applyDailyDelta(ctx, tx, core.EntityFarmer, dateStr, delta)
	})
}

// VoidPurchase reverses the purchase's contributions and marks it voided,
// keeping the row.
func (r *SQLiteRepository) VoidPurchase(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var (
			farmerID, totalC, paidC, changeC int64
			status, dateStr                  string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT farmer_id, date, total_amount_cents, paid_amount_cents, balance_change_cents, status
			FROM farmer_transactions WHERE id = ?`, id).
			Scan(&farmerID, &dateStr, &totalC, &paidC, &changeC, &status)
		if err == sql.ErrNoRows {
			return &core.NotFoundError{Entity: "purchase", ID: id}
		}
		if err != nil {
			return fmt.Errorf("%w: load purchase for void: %v", core.ErrPersistence, err)
		}
		if status == string(core.TxnVoided) {
			return core.Invalid("status", "transaction is already voided")
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE farmer_transactions SET status = 'voided' WHERE id = ?`, id); err != nil {
			return fmt.Errorf("%w: void purchase: %v", core.ErrPersistence, err)
		}

		derived, err := deriveBalanceTx(ctx, tx, core.EntityFarmer, farmerID)
		if err != nil {
			return err
		}
		if err := patchBalanceTx(ctx, tx, core.EntityFarmer, farmerID, derived); err != nil {
			return err
		}

		reversal := summaryDelta{
			SalesCents:       totalC,
			CashCents:        paidC,
			OutstandingCents: -changeC,
			Count:            1,
		}.negated()
		return r.applyDailyDelta(ctx, tx, core.EntityFarmer, dateStr, reversal)
	})
}
