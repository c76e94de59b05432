package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fishmarket/internal/core"
	"fishmarket/internal/storage"
)

func newTestService(t *testing.T, opts ...storage.Option) *Service {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), opts...)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return NewService(repo, nil, nil)
}

func money(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseMoney(s)
	if err != nil {
		t.Fatalf("parse money %q: %v", s, err)
	}
	return m
}

func seedCustomer(t *testing.T, svc *Service, name string) *core.Customer {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), name, "", "")
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func seedFarmer(t *testing.T, svc *Service, name string) *core.Farmer {
	t.Helper()
	f, err := svc.CreateFarmer(context.Background(), name, "", "")
	if err != nil {
		t.Fatalf("create farmer: %v", err)
	}
	return f
}

func seedCategory(t *testing.T, svc *Service, name, price string) *core.FishCategory {
	t.Helper()
	fc, err := svc.CreateFishCategory(context.Background(), name, money(t, price))
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return fc
}

func TestRecordSale(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Ali Hassan")
	category := seedCategory(t, svc, "Rohu", "1000")
	date := core.NewDate(2026, 1, 15)

	// 80 kg at Rs.1000 per 40 kg unit, paid 1500 of 2000
	sale, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       date,
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 80}},
		PaidAmount: money(t, "1500"),
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if sale.TotalAmount.String() != "2000.00" {
		t.Errorf("total = %s, want 2000.00", sale.TotalAmount)
	}
	if sale.BalanceChange.String() != "-500.00" {
		t.Errorf("balance change = %s, want -500.00", sale.BalanceChange)
	}
	if sale.BalanceAfter.String() != "-500.00" {
		t.Errorf("balance after = %s, want -500.00", sale.BalanceAfter)
	}
	if sale.PaymentStatus != core.StatusPartial {
		t.Errorf("payment status = %s, want partial", sale.PaymentStatus)
	}
	if sale.CustomerName != "Ali Hassan" {
		t.Errorf("customer name = %q", sale.CustomerName)
	}
	if len(sale.Items) != 1 || sale.Items[0].Subtotal.String() != "2000.00" {
		t.Errorf("items = %+v", sale.Items)
	}
	if sale.Items[0].FishName != "Rohu" {
		t.Errorf("fish name snapshot = %q, want Rohu", sale.Items[0].FishName)
	}

	got, err := svc.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Balance.String() != "-500.00" {
		t.Errorf("customer balance = %s, want -500.00", got.Balance)
	}

	summary, err := svc.GetDailySummary(ctx, core.EntityCustomer, date)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.TotalSales.String() != "2000.00" ||
		summary.TotalCashReceived.String() != "1500.00" ||
		summary.TotalOutstandingChange.String() != "500.00" ||
		summary.TransactionsCount != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRecordSaleValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Bilal Khan")
	category := seedCategory(t, svc, "Thaila", "500")

	t.Run("no items", func(t *testing.T) {
		_, err := svc.RecordSale(ctx, SaleInput{CustomerID: customer.ID})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.RecordSale(ctx, SaleInput{
			CustomerID: 9999,
			Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.RecordSale(ctx, SaleInput{
			CustomerID: customer.ID,
			Items:      []SaleItemInput{{FishCategoryID: 9999, WeightKg: 40}},
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("inactive category", func(t *testing.T) {
		if err := svc.SetFishCategoryActive(ctx, category.ID, false); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
		defer func() {
			if err := svc.SetFishCategoryActive(ctx, category.ID, true); err != nil {
				t.Fatalf("reactivate: %v", err)
			}
		}()
		_, err := svc.RecordSale(ctx, SaleInput{
			CustomerID: customer.ID,
			Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("paid beyond twice the total", func(t *testing.T) {
		_, err := svc.RecordSale(ctx, SaleInput{
			CustomerID: customer.ID,
			Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
			PaidAmount: money(t, "1000.01"), // total is 500
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("negative weight", func(t *testing.T) {
		_, err := svc.RecordSale(ctx, SaleInput{
			CustomerID: customer.ID,
			Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: -5}},
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestUpdateSalePaidAmount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Usman Tariq")
	category := seedCategory(t, svc, "Mushka", "1000")
	date := core.NewDate(2026, 2, 1)

	sale, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       date,
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 80}},
		PaidAmount: money(t, "1500"),
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	paid := money(t, "2000")
	updated, err := svc.UpdateSale(ctx, sale.ID, UpdateSaleInput{PaidAmount: &paid})
	if err != nil {
		t.Fatalf("update sale: %v", err)
	}

	if updated.PaymentStatus != core.StatusPaid {
		t.Errorf("status = %s, want paid", updated.PaymentStatus)
	}
	if updated.BalanceChange.String() != "0.00" {
		t.Errorf("balance change = %s, want 0.00", updated.BalanceChange)
	}
	// the receipt snapshot is not rewritten by edits
	if updated.BalanceAfter.String() != "-500.00" {
		t.Errorf("balance after = %s, want -500.00 (stale snapshot)", updated.BalanceAfter)
	}

	got, err := svc.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Balance.String() != "0.00" {
		t.Errorf("customer balance = %s, want 0.00", got.Balance)
	}

	summary, err := svc.GetDailySummary(ctx, core.EntityCustomer, date)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.TotalSales.String() != "2000.00" ||
		summary.TotalCashReceived.String() != "2000.00" ||
		summary.TotalOutstandingChange.String() != "0.00" ||
		summary.TransactionsCount != 1 {
		t.Errorf("summary after edit = %+v", summary)
	}
}

func TestUpdateSaleReplaceItems(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Imran Shah")
	rohu := seedCategory(t, svc, "Rohu", "1000")
	thaila := seedCategory(t, svc, "Thaila", "800")

	sale, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       core.NewDate(2026, 2, 2),
		Items:      []SaleItemInput{{FishCategoryID: rohu.ID, WeightKg: 40}},
		PaidAmount: money(t, "1000"),
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	updated, err := svc.UpdateSale(ctx, sale.ID, UpdateSaleInput{
		Items: []SaleItemInput{
			{FishCategoryID: rohu.ID, WeightKg: 40},
			{FishCategoryID: thaila.ID, WeightKg: 20},
		},
	})
	if err != nil {
		t.Fatalf("update sale: %v", err)
	}

	// 1000 + 800*20/40 = 1400
	if updated.TotalAmount.String() != "1400.00" {
		t.Errorf("total = %s, want 1400.00", updated.TotalAmount)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(updated.Items))
	}
	if updated.PaymentStatus != core.StatusPartial {
		t.Errorf("status = %s, want partial", updated.PaymentStatus)
	}

	got, _ := svc.GetCustomer(ctx, customer.ID)
	if got.Balance.String() != "-400.00" {
		t.Errorf("customer balance = %s, want -400.00", got.Balance)
	}
}

func TestVoidSale(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Kashif Mehmood")
	category := seedCategory(t, svc, "Singhara", "1200")
	date := core.NewDate(2026, 3, 1)

	sale, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       date,
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
		PaidAmount: money(t, "200"),
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	voided, err := svc.VoidSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("void sale: %v", err)
	}
	if voided.Status != core.TxnVoided {
		t.Errorf("status = %s, want voided", voided.Status)
	}

	got, err := svc.GetCustomer(ctx, customer.ID)
	if err != nil {
		t.Fatalf("get customer: %v", err)
	}
	if got.Balance.String() != "0.00" {
		t.Errorf("customer balance = %s, want 0.00 after void", got.Balance)
	}

	summary, err := svc.GetDailySummary(ctx, core.EntityCustomer, date)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if !summary.TotalSales.IsZero() || !summary.TotalCashReceived.IsZero() ||
		!summary.TotalOutstandingChange.IsZero() || summary.TransactionsCount != 0 {
		t.Errorf("summary after void = %+v", summary)
	}

	t.Run("double void rejected", func(t *testing.T) {
		if _, err := svc.VoidSale(ctx, sale.ID); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("edit of voided rejected", func(t *testing.T) {
		paid := money(t, "500")
		if _, err := svc.UpdateSale(ctx, sale.ID, UpdateSaleInput{PaidAmount: &paid}); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestOverpaymentClearsDebt(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Shoaib Anwar")
	category := seedCategory(t, svc, "Rohu", "1000")

	// first sale leaves a 1000 debt
	if _, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       core.NewDate(2026, 3, 2),
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 80}},
		PaidAmount: money(t, "1000"),
	}); err != nil {
		t.Fatalf("first sale: %v", err)
	}

	// second sale pays double its own bill, clearing the debt
	sale, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       core.NewDate(2026, 3, 3),
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
		PaidAmount: money(t, "2000"),
	})
	if err != nil {
		t.Fatalf("second sale: %v", err)
	}
	if sale.BalanceAfter.String() != "0.00" {
		t.Errorf("balance after = %s, want 0.00", sale.BalanceAfter)
	}

	got, _ := svc.GetCustomer(ctx, customer.ID)
	if got.Balance.String() != "0.00" {
		t.Errorf("customer balance = %s, want 0.00", got.Balance)
	}
}

func TestRecordPurchase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	farmer := seedFarmer(t, svc, "Rashid Chohan")
	date := core.NewDate(2026, 4, 1)

	purchase, err := svc.RecordPurchase(ctx, PurchaseInput{
		FarmerID:          farmer.ID,
		Date:              date,
		FishName:          "Silver Carp",
		WeightKg:          80,
		PricePerUnit:      money(t, "1000"),
		CommissionPercent: 6.25,
		HandlingCharges:   money(t, "50"),
		IceCharges:        money(t, "25"),
		PaidAmount:        money(t, "1000"),
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	// fish value 2000, commission 125, deductions 75, net 1800
	if purchase.FishValue.String() != "2000.00" {
		t.Errorf("fish value = %s, want 2000.00", purchase.FishValue)
	}
	if purchase.Commission.String() != "125.00" {
		t.Errorf("commission = %s, want 125.00", purchase.Commission)
	}
	if purchase.TotalAmount.String() != "1800.00" {
		t.Errorf("total = %s, want 1800.00", purchase.TotalAmount)
	}
	if purchase.BalanceChange.String() != "-800.00" {
		t.Errorf("balance change = %s, want -800.00", purchase.BalanceChange)
	}
	if purchase.PaymentStatus != core.StatusPartial {
		t.Errorf("status = %s, want partial", purchase.PaymentStatus)
	}

	got, err := svc.GetFarmer(ctx, farmer.ID)
	if err != nil {
		t.Fatalf("get farmer: %v", err)
	}
	if got.Balance.String() != "-800.00" {
		t.Errorf("farmer balance = %s, want -800.00 (business owes)", got.Balance)
	}

	t.Run("category created atomically", func(t *testing.T) {
		categories, err := svc.ListFishCategories(ctx, true)
		if err != nil {
			t.Fatalf("list categories: %v", err)
		}
		if len(categories) != 1 || categories[0].Name != "Silver Carp" {
			t.Fatalf("categories = %+v", categories)
		}
		if categories[0].PricePerUnit.String() != "1000.00" {
			t.Errorf("category price = %s, want 1000.00", categories[0].PricePerUnit)
		}
		if categories[0].ID != purchase.FishCategoryID {
			t.Errorf("purchase references category %d, list shows %d", purchase.FishCategoryID, categories[0].ID)
		}
	})

	t.Run("repeat purchase refreshes reference price", func(t *testing.T) {
		if _, err := svc.RecordPurchase(ctx, PurchaseInput{
			FarmerID:     farmer.ID,
			Date:         date,
			FishName:     "Silver Carp",
			WeightKg:     40,
			PricePerUnit: money(t, "1100"),
			PaidAmount:   money(t, "1100"),
		}); err != nil {
			t.Fatalf("second purchase: %v", err)
		}
		categories, _ := svc.ListFishCategories(ctx, true)
		if len(categories) != 1 {
			t.Fatalf("expected one category, got %d", len(categories))
		}
		if categories[0].PricePerUnit.String() != "1100.00" {
			t.Errorf("refreshed price = %s, want 1100.00", categories[0].PricePerUnit)
		}
	})

	t.Run("farmer summary tracked separately", func(t *testing.T) {
		summary, err := svc.GetDailySummary(ctx, core.EntityFarmer, date)
		if err != nil {
			t.Fatalf("get farmer summary: %v", err)
		}
		// 1800 + 1100 purchases, 1000 + 1100 cash
		if summary.TotalSales.String() != "2900.00" ||
			summary.TotalCashReceived.String() != "2100.00" ||
			summary.TransactionsCount != 2 {
			t.Errorf("farmer summary = %+v", summary)
		}

		customerSummary, err := svc.GetDailySummary(ctx, core.EntityCustomer, date)
		if err != nil {
			t.Fatalf("get customer summary: %v", err)
		}
		if customerSummary.TransactionsCount != 0 {
			t.Errorf("customer summary polluted by purchases: %+v", customerSummary)
		}
	})
}

func TestRecordPurchaseValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	farmer := seedFarmer(t, svc, "Nadeem Akhtar")

	t.Run("deductions exceed fish value", func(t *testing.T) {
		_, err := svc.RecordPurchase(ctx, PurchaseInput{
			FarmerID:        farmer.ID,
			FishName:        "Rohu",
			WeightKg:        40,
			PricePerUnit:    money(t, "100"),
			HandlingCharges: money(t, "200"),
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("commission out of range", func(t *testing.T) {
		_, err := svc.RecordPurchase(ctx, PurchaseInput{
			FarmerID:          farmer.ID,
			FishName:          "Rohu",
			WeightKg:          40,
			PricePerUnit:      money(t, "1000"),
			CommissionPercent: 101,
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown farmer", func(t *testing.T) {
		_, err := svc.RecordPurchase(ctx, PurchaseInput{
			FarmerID:     9999,
			FishName:     "Rohu",
			WeightKg:     40,
			PricePerUnit: money(t, "1000"),
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestVoidPurchase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	farmer := seedFarmer(t, svc, "Tariq Mahmood")
	date := core.NewDate(2026, 4, 5)

	purchase, err := svc.RecordPurchase(ctx, PurchaseInput{
		FarmerID:     farmer.ID,
		Date:         date,
		FishName:     "Thaila",
		WeightKg:     40,
		PricePerUnit: money(t, "900"),
		PaidAmount:   money(t, "400"),
	})
	if err != nil {
		t.Fatalf("record purchase: %v", err)
	}

	if _, err := svc.VoidPurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("void purchase: %v", err)
	}

	got, _ := svc.GetFarmer(ctx, farmer.ID)
	if got.Balance.String() != "0.00" {
		t.Errorf("farmer balance = %s, want 0.00 after void", got.Balance)
	}

	summary, _ := svc.GetDailySummary(ctx, core.EntityFarmer, date)
	if summary.TransactionsCount != 0 || !summary.TotalSales.IsZero() {
		t.Errorf("farmer summary after void = %+v", summary)
	}
}

func TestDuplicateEntities(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCustomer(ctx, "Adil Raza", "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateCustomer(ctx, "adil raza", "", ""); !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected duplicate error for case-insensitive name, got %v", err)
	}

	if _, err := svc.CreateFishCategory(ctx, "Rohu", money(t, "1000")); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := svc.CreateFishCategory(ctx, "ROHU", money(t, "900")); !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected duplicate category error, got %v", err)
	}
}

func TestPhoneNormalization(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, "Waqas Younis", "03001234567", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Phone != "0300-1234567" {
		t.Errorf("phone = %q, want 0300-1234567", c.Phone)
	}

	// same number in international notation is the same customer
	if _, err := svc.CreateCustomer(ctx, "Waqas Younis", "+92 300 1234567", ""); !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	if _, err := svc.CreateCustomer(ctx, "Junaid Iqbal", "not-a-phone", ""); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListCustomersPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Aslam Butt", "Bashir Ahmed", "Dawood Khan"} {
		seedCustomer(t, svc, name)
	}

	page, err := svc.ListCustomers(ctx, "", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Limit != 2 {
		t.Fatalf("page = total %d, items %d, limit %d", page.Total, len(page.Items), page.Limit)
	}
	if page.Items[0].Name != "Aslam Butt" {
		t.Errorf("ordering: first = %q", page.Items[0].Name)
	}

	page, err = svc.ListCustomers(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "Dawood Khan" {
		t.Fatalf("second page = %+v", page.Items)
	}

	t.Run("search by name", func(t *testing.T) {
		page, err := svc.ListCustomers(ctx, "Bashir", 0, 10)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if page.Total != 1 || page.Items[0].Name != "Bashir Ahmed" {
			t.Fatalf("search result = %+v", page.Items)
		}
	})
}

func TestDashboardStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Zafar Ali")
	paidUp := seedCustomer(t, svc, "Ghulam Abbas")
	farmer := seedFarmer(t, svc, "Akbar Joyia")
	category := seedCategory(t, svc, "Rohu", "1000")

	// Zafar owes 500
	if _, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: customer.ID,
		Date:       core.Today(),
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
		PaidAmount: money(t, "500"),
	}); err != nil {
		t.Fatalf("sale: %v", err)
	}
	// Ghulam is settled
	if _, err := svc.RecordSale(ctx, SaleInput{
		CustomerID: paidUp.ID,
		Date:       core.Today(),
		Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
		PaidAmount: money(t, "1000"),
	}); err != nil {
		t.Fatalf("sale: %v", err)
	}
	// the business owes Akbar 900
	if _, err := svc.RecordPurchase(ctx, PurchaseInput{
		FarmerID:     farmer.ID,
		Date:         core.Today(),
		FishName:     "Mori",
		WeightKg:     40,
		PricePerUnit: money(t, "900"),
	}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	stats, err := svc.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if stats.TodaySales.String() != "2000.00" {
		t.Errorf("today sales = %s, want 2000.00", stats.TodaySales)
	}
	if stats.TodayTransactions != 2 {
		t.Errorf("today transactions = %d, want 2", stats.TodayTransactions)
	}
	if stats.PendingCustomersCount != 1 || stats.PendingCustomersTotal.String() != "500.00" {
		t.Errorf("pending customers = %d / %s, want 1 / 500.00",
			stats.PendingCustomersCount, stats.PendingCustomersTotal)
	}
	if stats.OwedFarmersCount != 1 || stats.OwedFarmersTotal.String() != "900.00" {
		t.Errorf("owed farmers = %d / %s, want 1 / 900.00",
			stats.OwedFarmersCount, stats.OwedFarmersTotal)
	}
	if stats.TotalCustomers != 2 || stats.TotalFarmers != 1 {
		t.Errorf("entity counts = %d customers, %d farmers", stats.TotalCustomers, stats.TotalFarmers)
	}
	if stats.ActiveFishCategories != 2 { // Rohu + auto-created Mori
		t.Errorf("active categories = %d, want 2", stats.ActiveFishCategories)
	}
}

func TestDailySummaryRange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	customer := seedCustomer(t, svc, "Majid Nawaz")
	category := seedCategory(t, svc, "Rohu", "1000")

	for day := 1; day <= 3; day++ {
		if _, err := svc.RecordSale(ctx, SaleInput{
			CustomerID: customer.ID,
			Date:       core.NewDate(2026, 5, day),
			Items:      []SaleItemInput{{FishCategoryID: category.ID, WeightKg: 40}},
			PaidAmount: money(t, "1000"),
		}); err != nil {
			t.Fatalf("sale day %d: %v", day, err)
		}
	}

	summaries, err := svc.GetDailySummaryRange(ctx, core.EntityCustomer,
		core.NewDate(2026, 5, 1), core.NewDate(2026, 5, 2))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d, want 2 (bounds inclusive, day 3 excluded)", len(summaries))
	}
	if summaries[0].Date.String() != "2026-05-02" || summaries[1].Date.String() != "2026-05-01" {
		t.Errorf("order = %s, %s; want descending", summaries[0].Date, summaries[1].Date)
	}

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := svc.GetDailySummaryRange(ctx, core.EntityCustomer,
			core.NewDate(2026, 5, 2), core.NewDate(2026, 5, 1))
		if !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
