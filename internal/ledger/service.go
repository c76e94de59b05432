package ledger

import (
	"context"
	"strings"

	"fishmarket/internal/amqp"
	"fishmarket/internal/core"
	"fishmarket/internal/log"
	"fishmarket/internal/storage"
)

// EventPublisher is the outbound ledger-event stream. Publishing is
// best-effort: failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error
}

// Service is the transaction engine: it validates inputs, computes every
// money field, and hands the storage layer a fully determined record.
type Service struct {
	store  *storage.SQLiteRepository
	events EventPublisher
	logger *log.Logger
}

func NewService(store *storage.SQLiteRepository, events EventPublisher, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Service{
		store:  store,
		events: events,
		logger: logger.WithComponent(log.ComponentLedger),
	}
}

func (s *Service) publish(ctx context.Context, kind string, entity core.EntityKind, entityID, txnID int64) {
	if s.events == nil {
		return
	}
	msg := amqp.NewLedgerEventMessage(kind, entity, entityID, txnID)
	if err := s.events.PublishLedgerEvent(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldError, err.Error(),
			"kind", kind,
			log.FieldEntityKind, entity,
			log.FieldEntityID, entityID,
			log.FieldTransactionID, txnID)
	}
}

// CreateCustomer validates and stores a new customer. The phone number is
// normalized to the national format before the duplicate check so the same
// number in different notations cannot slip in twice.
func (s *Service) CreateCustomer(ctx context.Context, name, phone, address string) (*core.Customer, error) {
	c := &core.Customer{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	normalized, err := core.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	c.Phone = normalized

	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Customer created",
		log.FieldEntityID, c.ID, "name", c.Name)
	return s.store.GetCustomer(ctx, c.ID)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*core.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, name, phone, address string) (*core.Customer, error) {
	c := &core.Customer{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	normalized, err := core.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	c.Phone = normalized

	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return s.store.GetCustomer(ctx, id)
}

// ListCustomers pages customers, optionally filtered by a search term
// matching name, phone or id.
func (s *Service) ListCustomers(ctx context.Context, search string, offset, limit int) (core.Paginated[core.Customer], error) {
	return s.store.ListCustomers(ctx, strings.TrimSpace(search), offset, limit)
}

func (s *Service) CreateFarmer(ctx context.Context, name, phone, address string) (*core.Farmer, error) {
	f := &core.Farmer{
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	normalized, err := core.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	f.Phone = normalized

	if err := s.store.CreateFarmer(ctx, f); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Farmer created",
		log.FieldEntityID, f.ID, "name", f.Name)
	return s.store.GetFarmer(ctx, f.ID)
}

func (s *Service) GetFarmer(ctx context.Context, id int64) (*core.Farmer, error) {
	return s.store.GetFarmer(ctx, id)
}

func (s *Service) UpdateFarmer(ctx context.Context, id int64, name, phone, address string) (*core.Farmer, error) {
	f := &core.Farmer{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Address: strings.TrimSpace(address),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	normalized, err := core.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	f.Phone = normalized

	if err := s.store.UpdateFarmer(ctx, f); err != nil {
		return nil, err
	}
	return s.store.GetFarmer(ctx, id)
}

func (s *Service) ListFarmers(ctx context.Context, search string, offset, limit int) (core.Paginated[core.Farmer], error) {
	return s.store.ListFarmers(ctx, strings.TrimSpace(search), offset, limit)
}

func (s *Service) CreateFishCategory(ctx context.Context, name string, pricePerUnit core.Money) (*core.FishCategory, error) {
	fc := &core.FishCategory{Name: strings.TrimSpace(name), PricePerUnit: pricePerUnit}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.CreateFishCategory(ctx, fc); err != nil {
		return nil, err
	}
	return s.store.GetFishCategory(ctx, fc.ID)
}

func (s *Service) UpdateFishCategory(ctx context.Context, id int64, name string, pricePerUnit core.Money) (*core.FishCategory, error) {
	fc := &core.FishCategory{ID: id, Name: strings.TrimSpace(name), PricePerUnit: pricePerUnit}
	if err := fc.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateFishCategory(ctx, fc); err != nil {
		return nil, err
	}
	return s.store.GetFishCategory(ctx, id)
}

func (s *Service) SetFishCategoryActive(ctx context.Context, id int64, active bool) error {
	return s.store.SetFishCategoryActive(ctx, id, active)
}

func (s *Service) ListFishCategories(ctx context.Context, activeOnly bool) ([]core.FishCategory, error) {
	return s.store.ListFishCategories(ctx, activeOnly)
}

// DeriveBalance is the authoritative balance, summed from non-voided
// transaction history.
func (s *Service) DeriveBalance(ctx context.Context, kind core.EntityKind, id int64) (core.Money, error) {
	cents, err := s.store.DeriveBalanceCents(ctx, kind, id)
	if err != nil {
		return core.Money{}, err
	}
	return core.MoneyFromCents(cents), nil
}
