package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fishmarket/internal/core"
	"fishmarket/internal/log"
)

type entityRecord struct {
	ID           int64
	Name         string
	Phone        string
	Address      string
	BalanceCents int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *SQLiteRepository) createEntity(ctx context.Context, kind core.EntityKind, name, phone, address string) (int64, error) {
	table := entityTable(kind)

	var existing int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE lower(name) = lower(?) AND phone = ?`, table),
		name, phone).Scan(&existing)
	if err == nil {
		return 0, &core.DuplicateError{Entity: string(kind), Name: name, Phone: phone}
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("%w: check duplicate %s: %v", core.ErrPersistence, kind, err)
	}

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, phone, address) VALUES (?, ?, ?)`, table),
		name, phone, address)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return 0, &core.DuplicateError{Entity: string(kind), Name: name, Phone: phone}
		}
		return 0, fmt.Errorf("%w: insert %s: %v", core.ErrPersistence, kind, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", core.ErrPersistence, err)
	}
	return id, nil
}

// getEntity reads one entity and derives its balance from transaction
// history. A cache that disagrees with the derived value is patched on the
// spot and the divergence logged.
func (r *SQLiteRepository) getEntity(ctx context.Context, kind core.EntityKind, id int64) (*entityRecord, error) {
	var (
		rec                  entityRecord
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, name, phone, address, balance_cents, created_at, updated_at FROM %s WHERE id = ?`, entityTable(kind)),
		id).Scan(&rec.ID, &rec.Name, &rec.Phone, &rec.Address, &rec.BalanceCents, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: string(kind), ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", core.ErrPersistence, kind, err)
	}
	rec.CreatedAt = parseTimestamp(createdAt)
	rec.UpdatedAt = parseTimestamp(updatedAt)

	derived, err := r.DeriveBalanceCents(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if derived != rec.BalanceCents {
		r.logger.WarnContext(ctx, "Cached balance drifted from derived value",
			log.FieldEntityKind, kind,
			log.FieldEntityID, id,
			log.FieldBalanceCents, rec.BalanceCents,
			log.FieldDriftCents, derived-rec.BalanceCents)
		if err := r.PatchCachedBalance(ctx, kind, id, derived); err != nil {
			return nil, err
		}
	}
	rec.BalanceCents = derived

	return &rec, nil
}

func (r *SQLiteRepository) updateEntity(ctx context.Context, kind core.EntityKind, id int64, name, phone, address string) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = ?, phone = ?, address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, entityTable(kind)),
		name, phone, address, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return &core.DuplicateError{Entity: string(kind), Name: name, Phone: phone}
		}
		return fmt.Errorf("%w: update %s: %v", core.ErrPersistence, kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: string(kind), ID: id}
	}
	return nil
}

// listEntities pages through entities ordered by name. Balances come from a
// join against transaction history, not the cached column.
func (r *SQLiteRepository) listEntities(ctx context.Context, kind core.EntityKind, search string, offset, limit int) ([]entityRecord, int64, error) {
	table := entityTable(kind)
	txns, fk := txnTable(kind)

	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE e.name LIKE ? OR e.phone LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
		if id, err := strconv.ParseInt(search, 10, 64); err == nil {
			where += ` OR e.id = ?`
			args = append(args, id)
		}
	}

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s e %s`, table, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count %s: %v", core.ErrPersistence, kind, err)
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.phone, e.address, COALESCE(b.derived, 0), e.created_at, e.updated_at
		FROM %s e
		LEFT JOIN (
			SELECT %s AS eid, SUM(balance_change_cents) AS derived
			FROM %s WHERE status = 'completed' GROUP BY %s
		) b ON b.eid = e.id
		%s
		ORDER BY e.name COLLATE NOCASE
		LIMIT ? OFFSET ?`, table, fk, txns, fk, where)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list %s: %v", core.ErrPersistence, kind, err)
	}
	defer rows.Close()

	var records []entityRecord
	for rows.Next() {
		var (
			rec                  entityRecord
			createdAt, updatedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Phone, &rec.Address, &rec.BalanceCents, &createdAt, &updatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: scan %s: %v", core.ErrPersistence, kind, err)
		}
		rec.CreatedAt = parseTimestamp(createdAt)
		rec.UpdatedAt = parseTimestamp(updatedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterate %s: %v", core.ErrPersistence, kind, err)
	}

	return records, total, nil
}

func customerFromRecord(rec *entityRecord) *core.Customer {
	return &core.Customer{
		ID:        rec.ID,
		Name:      rec.Name,
		Phone:     rec.Phone,
		Address:   rec.Address,
		Balance:   core.MoneyFromCents(rec.BalanceCents),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func farmerFromRecord(rec *entityRecord) *core.Farmer {
	return &core.Farmer{
		ID:        rec.ID,
		Name:      rec.Name,
		Phone:     rec.Phone,
		Address:   rec.Address,
		Balance:   core.MoneyFromCents(rec.BalanceCents),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c *core.Customer) error {
	id, err := r.createEntity(ctx, core.EntityCustomer, c.Name, c.Phone, c.Address)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *SQLiteRepository) GetCustomer(ctx context.Context, id int64) (*core.Customer, error) {
	rec, err := r.getEntity(ctx, core.EntityCustomer, id)
	if err != nil {
		return nil, err
	}
	return customerFromRecord(rec), nil
}

func (r *SQLiteRepository) UpdateCustomer(ctx context.Context, c *core.Customer) error {
	return r.updateEntity(ctx, core.EntityCustomer, c.ID, c.Name, c.Phone, c.Address)
}

func (r *SQLiteRepository) ListCustomers(ctx context.Context, search string, offset, limit int) (core.Paginated[core.Customer], error) {
	var page core.Paginated[core.Customer]

	offset, limit = core.ClampPageBounds(offset, limit)
	records, total, err := r.listEntities(ctx, core.EntityCustomer, search, offset, limit)
	if err != nil {
		return page, err
	}

	page.Items = make([]core.Customer, len(records))
	for i := range records {
		page.Items[i] = *customerFromRecord(&records[i])
	}
	page.Total = total
	page.Offset = offset
	page.Limit = limit
	return page, nil
}

func (r *SQLiteRepository) CreateFarmer(ctx context.Context, f *core.Farmer) error {
	id, err := r.createEntity(ctx, core.EntityFarmer, f.Name, f.Phone, f.Address)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *SQLiteRepository) GetFarmer(ctx context.Context, id int64) (*core.Farmer, error) {
	rec, err := r.getEntity(ctx, core.EntityFarmer, id)
	if err != nil {
		return nil, err
	}
	return farmerFromRecord(rec), nil
}

func (r *SQLiteRepository) UpdateFarmer(ctx context.Context, f *core.Farmer) error {
	return r.updateEntity(ctx, core.EntityFarmer, f.ID, f.Name, f.Phone, f.Address)
}

func (r *SQLiteRepository) ListFarmers(ctx context.Context, search string, offset, limit int) (core.Paginated[core.Farmer], error) {
	var page core.Paginated[core.Farmer]

	offset, limit = core.ClampPageBounds(offset, limit)
	records, total, err := r.listEntities(ctx, core.EntityFarmer, search, offset, limit)
	if err != nil {
		return page, err
	}

	page.Items = make([]core.Farmer, len(records))
	for i := range records {
		page.Items[i] = *farmerFromRecord(&records[i])
	}
	page.Total = total
	page.Offset = offset
	page.Limit = limit
	return page, nil
}

// ListEntityIDs returns all entity ids for one kind, used by the periodic
// reconciliation pass.
func (r *SQLiteRepository) ListEntityIDs(ctx context.Context, kind core.EntityKind, afterID int64, limit int) ([]int64, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id > ? ORDER BY id LIMIT ?`, entityTable(kind))
	rows, err := r.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s ids: %v", core.ErrPersistence, kind, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan id: %v", core.ErrPersistence, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
