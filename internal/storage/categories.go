package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fishmarket/internal/core"
)

func scanCategory(row interface{ Scan(...any) error }) (*core.FishCategory, error) {
	var (
		fc                   core.FishCategory
		priceCents           int64
		active               int64
		createdAt, updatedAt string
	)
	if err := row.Scan(&fc.ID, &fc.Name, &priceCents, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	fc.PricePerUnit = core.MoneyFromCents(priceCents)
	fc.Active = active != 0
	fc.CreatedAt = parseTimestamp(createdAt)
	fc.UpdatedAt = parseTimestamp(updatedAt)
	return &fc, nil
}

func (r *SQLiteRepository) CreateFishCategory(ctx context.Context, fc *core.FishCategory) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO fish_categories (name, price_per_unit_cents, active) VALUES (?, ?, 1)`,
		strings.TrimSpace(fc.Name), fc.PricePerUnit.Cents())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return &core.DuplicateError{Entity: "fish category", Name: fc.Name}
		}
		return fmt.Errorf("%w: insert fish category: %v", core.ErrPersistence, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: last insert id: %v", core.ErrPersistence, err)
	}
	fc.ID = id
	fc.Active = true
	return nil
}

func (r *SQLiteRepository) GetFishCategory(ctx context.Context, id int64) (*core.FishCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, price_per_unit_cents, active, created_at, updated_at FROM fish_categories WHERE id = ?`, id)
	fc, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "fish category", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get fish category: %v", core.ErrPersistence, err)
	}
	return fc, nil
}

// GetFishCategoryByName matches case-insensitively on the unique name.
func (r *SQLiteRepository) GetFishCategoryByName(ctx context.Context, name string) (*core.FishCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, price_per_unit_cents, active, created_at, updated_at FROM fish_categories WHERE name = ?`,
		strings.TrimSpace(name))
	fc, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, &core.NotFoundError{Entity: "fish category"}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get fish category by name: %v", core.ErrPersistence, err)
	}
	return fc, nil
}

func (r *SQLiteRepository) UpdateFishCategory(ctx context.Context, fc *core.FishCategory) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fish_categories SET name = ?, price_per_unit_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.TrimSpace(fc.Name), fc.PricePerUnit.Cents(), fc.ID)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return &core.DuplicateError{Entity: "fish category", Name: fc.Name}
		}
		return fmt.Errorf("%w: update fish category: %v", core.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "fish category", ID: fc.ID}
	}
	return nil
}

func (r *SQLiteRepository) SetFishCategoryActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fish_categories SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("%w: set fish category active: %v", core.ErrPersistence, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Entity: "fish category", ID: id}
	}
	return nil
}

func (r *SQLiteRepository) ListFishCategories(ctx context.Context, activeOnly bool) ([]core.FishCategory, error) {
	query := `SELECT id, name, price_per_unit_cents, active, created_at, updated_at FROM fish_categories`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name COLLATE NOCASE`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list fish categories: %v", core.ErrPersistence, err)
	}
	defer rows.Close()

	var categories []core.FishCategory
	for rows.Next() {
		fc, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan fish category: %v", core.ErrPersistence, err)
		}
		categories = append(categories, *fc)
	}
	return categories, rows.Err()
}

// upsertCategoryTx creates the category or refreshes its reference price
// inside an open transaction. Used when a purchase names a category that
// does not exist yet.
func upsertCategoryTx(ctx context.Context, tx *sql.Tx, name string, priceCents int64) (int64, error) {
	name = strings.TrimSpace(name)

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM fish_categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE fish_categories SET price_per_unit_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			priceCents, id); err != nil {
			return 0, fmt.Errorf("%w: refresh category price: %v", core.ErrPersistence, err)
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("%w: lookup category: %v", core.ErrPersistence, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO fish_categories (name, price_per_unit_cents, active) VALUES (?, ?, 1)`,
		name, priceCents)
	if err != nil {
		return 0, fmt.Errorf("%w: insert category: %v", core.ErrPersistence, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: last insert id: %v", core.ErrPersistence, err)
	}
	return id, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
