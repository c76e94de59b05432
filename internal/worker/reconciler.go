package worker

import (
	"context"
	"errors"
	"time"

	"fishmarket/internal/amqp"
	"fishmarket/internal/core"
	"fishmarket/internal/log"
	"fishmarket/internal/storage"
)

// Reconciler is the balance-consistency audit: it compares each entity's
// cached balance against the value derived from transaction history and
// patches the cache when they disagree. It runs event-driven off the
// ledger stream and as a periodic full pass.
type Reconciler struct {
	store     *storage.SQLiteRepository
	logger    *log.Logger
	batchSize int
}

func NewReconciler(store *storage.SQLiteRepository, logger *log.Logger, batchSize int) *Reconciler {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if batchSize < 1 {
		batchSize = 100
	}
	return &Reconciler{
		store:     store,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
	}
}

// HandleLedgerEvent reconciles the entity a ledger event points at.
func (r *Reconciler) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Entity != core.EntityCustomer && msg.Entity != core.EntityFarmer {
		r.logger.WarnContext(ctx, "Dropping event with unknown entity kind",
			"kind", msg.Kind, log.FieldEntityKind, msg.Entity)
		return nil
	}
	return r.ReconcileEntity(ctx, msg.Entity, msg.EntityID)
}

// ReconcileEntity checks one entity. A missing entity is logged and
// swallowed so a stale event cannot requeue forever.
func (r *Reconciler) ReconcileEntity(ctx context.Context, kind core.EntityKind, id int64) error {
	cached, err := r.store.CachedBalanceCents(ctx, kind, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			r.logger.WarnContext(ctx, "Entity in event no longer exists",
				log.FieldEntityKind, kind, log.FieldEntityID, id)
			return nil
		}
		return err
	}

	derived, err := r.store.DeriveBalanceCents(ctx, kind, id)
	if err != nil {
		return err
	}

	if derived == cached {
		return nil
	}

	r.logger.WarnContext(ctx, "Cached balance diverged, patching",
		log.FieldEntityKind, kind,
		log.FieldEntityID, id,
		log.FieldBalanceCents, cached,
		log.FieldDriftCents, derived-cached)

	return r.store.PatchCachedBalance(ctx, kind, id, derived)
}

// FullPass reconciles every customer and farmer in id-ordered batches.
func (r *Reconciler) FullPass(ctx context.Context) error {
	for _, kind := range []core.EntityKind{core.EntityCustomer, core.EntityFarmer} {
		var afterID int64
		for {
			ids, err := r.store.ListEntityIDs(ctx, kind, afterID, r.batchSize)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				break
			}
			for _, id := range ids {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := r.ReconcileEntity(ctx, kind, id); err != nil {
					r.logger.ErrorContext(ctx, "Reconciliation failed",
						log.FieldError, err.Error(),
						log.FieldEntityKind, kind,
						log.FieldEntityID, id)
				}
			}
			afterID = ids[len(ids)-1]
		}
	}
	return nil
}

// RunPeriodic runs a full pass on every tick until the context ends. The
// first pass runs immediately.
func (r *Reconciler) RunPeriodic(ctx context.Context, interval time.Duration) error {
	r.logger.InfoContext(ctx, "Starting periodic balance audit", "interval", interval)

	if err := r.FullPass(ctx); err != nil && ctx.Err() == nil {
		r.logger.ErrorContext(ctx, "Initial audit pass failed", log.FieldError, err.Error())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "Stopping periodic balance audit", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := r.FullPass(ctx); err != nil && ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "Audit pass failed", log.FieldError, err.Error())
			}
		}
	}
}
