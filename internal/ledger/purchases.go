package ledger

import (
	"context"
	"strings"

	"fishmarket/internal/amqp"
	"fishmarket/internal/core"
	"fishmarket/internal/log"
	"fishmarket/internal/storage"
)

// PurchaseInput is a farmer purchase as entered at the counter: gross fish
// value terms plus the commission percentage and fixed deductions.
type PurchaseInput struct {
	FarmerID          int64
	Date              core.Date
	Time              string
	FishName          string
	WeightKg          float64
	PricePerUnit      core.Money
	CommissionPercent float64
	HandlingCharges   core.Money
	IceCharges        core.Money
	LabourCharges     core.Money
	ExtraCharges      core.Money
	PaidAmount        core.Money
	Notes             string
}

// RecordPurchase computes the net payable (fish value minus commission and
// deductions) and persists the purchase atomically. A fish category named
// for the first time is created in the same SQL transaction.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*core.FarmerTransaction, error) {
	if in.FarmerID <= 0 {
		return nil, core.Invalid("farmer_id", "is required")
	}
	if strings.TrimSpace(in.FishName) == "" {
		return nil, core.Invalid("fish_name", "is required")
	}
	if err := core.ValidateWeight(in.WeightKg); err != nil {
		return nil, err
	}
	if err := core.ValidatePrice(in.PricePerUnit); err != nil {
		return nil, err
	}
	if in.CommissionPercent < 0 || in.CommissionPercent > 100 {
		return nil, core.Invalid("commission_percent", "must be between 0 and 100")
	}
	for _, charge := range []struct {
		name  string
		value core.Money
	}{
		{"handling_charges", in.HandlingCharges},
		{"ice_charges", in.IceCharges},
		{"labour_charges", in.LabourCharges},
		{"extra_charges", in.ExtraCharges},
	} {
		if charge.value.IsNegative() {
			return nil, core.Invalid(charge.name, "cannot be negative")
		}
	}
	if in.Date.IsZero() {
		in.Date = core.Today()
	}

	fishValue, err := in.PricePerUnit.PerUnit(in.WeightKg)
	if err != nil {
		return nil, err
	}
	commission, err := fishValue.Percent(in.CommissionPercent)
	if err != nil {
		return nil, err
	}

	total := fishValue.Sub(commission).
		Sub(in.HandlingCharges).Sub(in.IceCharges).
		Sub(in.LabourCharges).Sub(in.ExtraCharges)
	if total.IsNegative() {
		return nil, core.Invalid("charges", "deductions exceed the fish value")
	}
	if err := core.ValidatePaidAmount(in.PaidAmount, total); err != nil {
		return nil, err
	}

	t := &core.FarmerTransaction{
		FarmerID:          in.FarmerID,
		Date:              in.Date,
		Time:              in.Time,
		FishName:          strings.TrimSpace(in.FishName),
		WeightKg:          in.WeightKg,
		PricePerUnit:      in.PricePerUnit.Round(),
		FishValue:         fishValue,
		CommissionPercent: in.CommissionPercent,
		Commission:        commission,
		HandlingCharges:   in.HandlingCharges.Round(),
		IceCharges:        in.IceCharges.Round(),
		LabourCharges:     in.LabourCharges.Round(),
		ExtraCharges:      in.ExtraCharges.Round(),
		TotalAmount:       total,
		PaidAmount:        in.PaidAmount.Round(),
		BalanceChange:     in.PaidAmount.Sub(total),
		PaymentStatus:     core.DerivePaymentStatus(in.PaidAmount, total),
		Notes:             strings.TrimSpace(in.Notes),
	}

	if err := s.store.RecordPurchase(ctx, t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Purchase recorded",
		log.FieldTransactionID, t.ID,
		log.FieldEntityID, t.FarmerID,
		log.FieldAmountCents, t.TotalAmount.Cents(),
		"payment_status", t.PaymentStatus)
	s.publish(ctx, amqp.EventPurchaseRecorded, core.EntityFarmer, t.FarmerID, t.ID)

	return t, nil
}

func (s *Service) GetPurchase(ctx context.Context, id int64) (*core.FarmerTransaction, error) {
	return s.store.GetPurchase(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, f storage.PurchaseFilter, offset, limit int) (core.Paginated[core.FarmerTransaction], error) {
	return s.store.ListPurchases(ctx, f, offset, limit)
}

// UpdatePurchaseInput carries the editable fields of a purchase. Nil
// pointers mean "keep the stored value".
type UpdatePurchaseInput struct {
	PaidAmount *core.Money
	Notes      *string
}

// UpdatePurchase recomputes the balance change from the new paid amount
// and applies it as a delta.
func (s *Service) UpdatePurchase(ctx context.Context, id int64, in UpdatePurchaseInput) (*core.FarmerTransaction, error) {
	existing, err := s.store.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == core.TxnVoided {
		return nil, core.Invalid("status", "cannot edit a voided transaction")
	}

	paid := existing.PaidAmount
	if in.PaidAmount != nil {
		paid = in.PaidAmount.Round()
	}
	if err := core.ValidatePaidAmount(paid, existing.TotalAmount); err != nil {
		return nil, err
	}

	notes := existing.Notes
	if in.Notes != nil {
		notes = strings.TrimSpace(*in.Notes)
	}

	updated := &core.FarmerTransaction{
		ID:            id,
		FarmerID:      existing.FarmerID,
		Date:          existing.Date,
		TotalAmount:   existing.TotalAmount,
		PaidAmount:    paid,
		BalanceChange: paid.Sub(existing.TotalAmount),
		PaymentStatus: core.DerivePaymentStatus(paid, existing.TotalAmount),
		Notes:         notes,
	}

	if err := s.store.UpdatePurchase(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Purchase updated",
		log.FieldTransactionID, id,
		log.FieldEntityID, existing.FarmerID)
	s.publish(ctx, amqp.EventPurchaseUpdated, core.EntityFarmer, existing.FarmerID, id)

	return s.store.GetPurchase(ctx, id)
}

// VoidPurchase reverses the purchase's contributions, keeping the row.
func (s *Service) VoidPurchase(ctx context.Context, id int64) (*core.FarmerTransaction, error) {
	existing, err := s.store.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.VoidPurchase(ctx, id); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Purchase voided",
		log.FieldTransactionID, id,
		log.FieldEntityID, existing.FarmerID)
	s.publish(ctx, amqp.EventPurchaseVoided, core.EntityFarmer, existing.FarmerID, id)

	return s.store.GetPurchase(ctx, id)
}
