package worker

import (
	"context"
	"path/filepath"
	"testing"

	"fishmarket/internal/amqp"
	"fishmarket/internal/core"
	"fishmarket/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedSale(t *testing.T, repo *storage.SQLiteRepository, customerID, totalCents, paidCents int64) {
	t.Helper()

	total := core.MoneyFromCents(totalCents)
	paid := core.MoneyFromCents(paidCents)
	sale := &core.Transaction{
		CustomerID:    customerID,
		Date:          core.NewDate(2026, 8, 1),
		TotalAmount:   total,
		PaidAmount:    paid,
		BalanceChange: paid.Sub(total),
		PaymentStatus: core.DerivePaymentStatus(paid, total),
	}
	if err := repo.RecordSale(context.Background(), sale); err != nil {
		t.Fatalf("record sale: %v", err)
	}
}

func TestReconcileEntityPatchesDrift(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	c := &core.Customer{Name: "Aslam Pervez"}
	if err := repo.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	seedSale(t, repo, c.ID, 100000, 40000)

	// knock the cache out of sync
	if err := repo.PatchCachedBalance(ctx, core.EntityCustomer, c.ID, 777); err != nil {
		t.Fatalf("corrupt cache: %v", err)
	}

	rec := NewReconciler(repo, nil, 0)
	if err := rec.ReconcileEntity(ctx, core.EntityCustomer, c.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	cached, err := repo.CachedBalanceCents(ctx, core.EntityCustomer, c.ID)
	if err != nil {
		t.Fatalf("cached balance: %v", err)
	}
	if cached != -60000 {
		t.Errorf("cache = %d cents, want -60000", cached)
	}
}

func TestReconcileEntityNoDriftIsNoop(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	c := &core.Customer{Name: "Hamid Dar"}
	if err := repo.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	seedSale(t, repo, c.ID, 50000, 50000)

	rec := NewReconciler(repo, nil, 0)
	if err := rec.ReconcileEntity(ctx, core.EntityCustomer, c.ID); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
}

func TestReconcileMissingEntitySwallowed(t *testing.T) {
	repo := newTestStore(t)
	rec := NewReconciler(repo, nil, 0)

	if err := rec.ReconcileEntity(context.Background(), core.EntityCustomer, 9999); err != nil {
		t.Fatalf("missing entity should not error, got %v", err)
	}
}

func TestHandleLedgerEvent(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	c := &core.Customer{Name: "Farooq Leghari"}
	if err := repo.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	seedSale(t, repo, c.ID, 80000, 30000)
	if err := repo.PatchCachedBalance(ctx, core.EntityCustomer, c.ID, 1); err != nil {
		t.Fatalf("corrupt cache: %v", err)
	}

	rec := NewReconciler(repo, nil, 0)
	msg := amqp.NewLedgerEventMessage(amqp.EventSaleRecorded, core.EntityCustomer, c.ID, 1)
	if err := rec.HandleLedgerEvent(ctx, msg); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	cached, _ := repo.CachedBalanceCents(ctx, core.EntityCustomer, c.ID)
	if cached != -50000 {
		t.Errorf("cache = %d cents, want -50000", cached)
	}

	t.Run("unknown entity kind dropped", func(t *testing.T) {
		bad := amqp.NewLedgerEventMessage(amqp.EventSaleRecorded, core.EntityKind("vendor"), 1, 1)
		if err := rec.HandleLedgerEvent(ctx, bad); err != nil {
			t.Fatalf("unknown kind should not error, got %v", err)
		}
	})
}

func TestFullPass(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	var customers []*core.Customer
	for _, name := range []string{"Anwar Sahto", "Babar Junejo", "Dilawar Rind"} {
		c := &core.Customer{Name: name}
		if err := repo.CreateCustomer(ctx, c); err != nil {
			t.Fatalf("create customer: %v", err)
		}
		seedSale(t, repo, c.ID, 100000, 25000)
		if err := repo.PatchCachedBalance(ctx, core.EntityCustomer, c.ID, 0); err != nil {
			t.Fatalf("corrupt cache: %v", err)
		}
		customers = append(customers, c)
	}

	f := &core.Farmer{Name: "Qadir Magsi"}
	if err := repo.CreateFarmer(ctx, f); err != nil {
		t.Fatalf("create farmer: %v", err)
	}

	// batch size 2 forces multiple batches over three customers
	rec := NewReconciler(repo, nil, 2)
	if err := rec.FullPass(ctx); err != nil {
		t.Fatalf("full pass: %v", err)
	}

	for _, c := range customers {
		cached, err := repo.CachedBalanceCents(ctx, core.EntityCustomer, c.ID)
		if err != nil {
			t.Fatalf("cached balance: %v", err)
		}
		if cached != -75000 {
			t.Errorf("customer %d cache = %d cents, want -75000", c.ID, cached)
		}
	}
}

func TestFullPassCancelled(t *testing.T) {
	repo := newTestStore(t)

	c := &core.Customer{Name: "Sajid Ansari"}
	if err := repo.CreateCustomer(context.Background(), c); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := NewReconciler(repo, nil, 0)
	if err := rec.FullPass(ctx); err == nil {
		t.Fatal("expected an error from a cancelled pass")
	}
}
