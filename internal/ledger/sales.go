package ledger

import (
	"context"
	"strings"

	"fishmarket/internal/amqp"
	"fishmarket/internal/core"
	"fishmarket/internal/log"
	"fishmarket/internal/storage"
)

// SaleItemInput is one fish entry on an incoming sale. A zero PricePerUnit
// means "use the category's current price"; a set value overrides it for
// this bill only.
type SaleItemInput struct {
	FishCategoryID int64
	WeightKg       float64
	PricePerUnit   core.Money
}

// SaleInput is everything a caller provides to record a sale. Money fields
// derived from it (subtotals, total, balance change, status) are computed
// here, never accepted from outside.
type SaleInput struct {
	CustomerID int64
	Date       core.Date
	Time       string
	Items      []SaleItemInput
	PaidAmount core.Money
	Notes      string
}

// buildLineItems resolves categories, snapshots names and prices, and
// computes per-item subtotals plus the bill total.
func (s *Service) buildLineItems(ctx context.Context, inputs []SaleItemInput) ([]core.LineItem, core.Money, error) {
	if len(inputs) == 0 {
		return nil, core.Money{}, core.Invalid("items", "at least one line item is required")
	}

	var total core.Money
	items := make([]core.LineItem, 0, len(inputs))
	for _, in := range inputs {
		if in.FishCategoryID <= 0 {
			return nil, core.Money{}, core.Invalid("fish_category_id", "is required")
		}
		category, err := s.store.GetFishCategory(ctx, in.FishCategoryID)
		if err != nil {
			return nil, core.Money{}, err
		}
		if !category.Active {
			return nil, core.Money{}, core.Invalid("fish_category_id", "category is inactive")
		}

		price := in.PricePerUnit
		if price.IsZero() {
			price = category.PricePerUnit
		}

		item := core.LineItem{
			FishCategoryID: category.ID,
			FishName:       category.Name,
			WeightKg:       in.WeightKg,
			PricePerUnit:   price,
		}
		if err := item.Validate(); err != nil {
			return nil, core.Money{}, err
		}

		subtotal, err := price.PerUnit(in.WeightKg)
		if err != nil {
			return nil, core.Money{}, err
		}
		item.Subtotal = subtotal
		total = total.Add(subtotal)
		items = append(items, item)
	}

	return items, total, nil
}

// RecordSale validates the input, computes all money fields and persists
// the sale atomically. The returned transaction carries the receipt
// snapshot of the customer's balance.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*core.Transaction, error) {
	if in.CustomerID <= 0 {
		return nil, core.Invalid("customer_id", "is required")
	}
	if in.Date.IsZero() {
		in.Date = core.Today()
	}

	items, total, err := s.buildLineItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	if err := core.ValidatePaidAmount(in.PaidAmount, total); err != nil {
		return nil, err
	}

	t := &core.Transaction{
		CustomerID:    in.CustomerID,
		Date:          in.Date,
		Time:          in.Time,
		Items:         items,
		TotalAmount:   total,
		PaidAmount:    in.PaidAmount.Round(),
		BalanceChange: in.PaidAmount.Sub(total),
		PaymentStatus: core.DerivePaymentStatus(in.PaidAmount, total),
		Notes:         strings.TrimSpace(in.Notes),
	}

	if err := s.store.RecordSale(ctx, t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Sale recorded",
		log.FieldTransactionID, t.ID,
		log.FieldEntityID, t.CustomerID,
		log.FieldAmountCents, t.TotalAmount.Cents(),
		"payment_status", t.PaymentStatus)
	s.publish(ctx, amqp.EventSaleRecorded, core.EntityCustomer, t.CustomerID, t.ID)

	return t, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*core.Transaction, error) {
	return s.store.GetSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, f storage.SaleFilter, offset, limit int) (core.Paginated[core.Transaction], error) {
	return s.store.ListSales(ctx, f, offset, limit)
}

// UpdateSaleInput carries the editable fields of a sale. Nil pointers mean
// "keep the stored value"; a nil Items slice keeps the stored line items.
type UpdateSaleInput struct {
	PaidAmount *core.Money
	Notes      *string
	Items      []SaleItemInput
}

// UpdateSale recomputes the sale's money fields from the new input and
// applies the change as a delta against balance and daily summary.
func (s *Service) UpdateSale(ctx context.Context, id int64, in UpdateSaleInput) (*core.Transaction, error) {
	existing, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == core.TxnVoided {
		return nil, core.Invalid("status", "cannot edit a voided transaction")
	}

	total := existing.TotalAmount
	var items []core.LineItem
	if in.Items != nil {
		items, total, err = s.buildLineItems(ctx, in.Items)
		if err != nil {
			return nil, err
		}
	}

	paid := existing.PaidAmount
	if in.PaidAmount != nil {
		paid = in.PaidAmount.Round()
	}
	if err := core.ValidatePaidAmount(paid, total); err != nil {
		return nil, err
	}

	notes := existing.Notes
	if in.Notes != nil {
		notes = strings.TrimSpace(*in.Notes)
	}

	updated := &core.Transaction{
		ID:            id,
		CustomerID:    existing.CustomerID,
		Date:          existing.Date,
		Items:         items,
		TotalAmount:   total,
		PaidAmount:    paid,
		BalanceChange: paid.Sub(total),
		PaymentStatus: core.DerivePaymentStatus(paid, total),
		Notes:         notes,
	}

	if err := s.store.UpdateSale(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Sale updated",
		log.FieldTransactionID, id,
		log.FieldEntityID, existing.CustomerID,
		log.FieldAmountCents, total.Cents())
	s.publish(ctx, amqp.EventSaleUpdated, core.EntityCustomer, existing.CustomerID, id)

	return s.store.GetSale(ctx, id)
}

// VoidSale reverses the sale's balance and summary contributions. The row
// stays in place, marked voided.
func (s *Service) VoidSale(ctx context.Context, id int64) (*core.Transaction, error) {
	existing, err := s.store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.VoidSale(ctx, id); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Sale voided",
		log.FieldTransactionID, id,
		log.FieldEntityID, existing.CustomerID)
	s.publish(ctx, amqp.EventSaleVoided, core.EntityCustomer, existing.CustomerID, id)

	return s.store.GetSale(ctx, id)
}
