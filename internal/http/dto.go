package http

import (
	"time"

	"fishmarket/internal/core"
)

// Request bodies. Money fields decode from quoted or bare decimal numbers.

type entityRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type categoryRequest struct {
	Name         string     `json:"name"`
	PricePerUnit core.Money `json:"price_per_unit"`
}

type categoryActiveRequest struct {
	Active bool `json:"active"`
}

type saleItemRequest struct {
	FishCategoryID int64      `json:"fish_category_id"`
	WeightKg       float64    `json:"weight_kg"`
	PricePerUnit   core.Money `json:"price_per_unit"`
}

type saleRequest struct {
	CustomerID int64             `json:"customer_id"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Items      []saleItemRequest `json:"items"`
	PaidAmount core.Money        `json:"paid_amount"`
	Notes      string            `json:"notes"`
}

type saleUpdateRequest struct {
	PaidAmount *core.Money       `json:"paid_amount"`
	Notes      *string           `json:"notes"`
	Items      []saleItemRequest `json:"items"`
}

type purchaseRequest struct {
	FarmerID          int64      `json:"farmer_id"`
	Date              string     `json:"date"`
	Time              string     `json:"time"`
	FishName          string     `json:"fish_name"`
	WeightKg          float64    `json:"weight_kg"`
	PricePerUnit      core.Money `json:"price_per_unit"`
	CommissionPercent float64    `json:"commission_percent"`
	HandlingCharges   core.Money `json:"handling_charges"`
	IceCharges        core.Money `json:"ice_charges"`
	LabourCharges     core.Money `json:"labour_charges"`
	ExtraCharges      core.Money `json:"extra_charges"`
	PaidAmount        core.Money `json:"paid_amount"`
	Notes             string     `json:"notes"`
}

type purchaseUpdateRequest struct {
	PaidAmount *core.Money `json:"paid_amount"`
	Notes      *string     `json:"notes"`
}

// Response bodies.

type entityResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Balance   core.Money `json:"balance"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type balanceResponse struct {
	EntityID int64      `json:"entity_id"`
	Kind     string     `json:"kind"`
	Balance  core.Money `json:"balance"`
}

type categoryResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	PricePerUnit core.Money `json:"price_per_unit"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type saleItemResponse struct {
	ID             int64      `json:"id"`
	FishCategoryID int64      `json:"fish_category_id"`
	FishName       string     `json:"fish_name"`
	WeightKg       float64    `json:"weight_kg"`
	PricePerUnit   core.Money `json:"price_per_unit"`
	Subtotal       core.Money `json:"subtotal"`
}

type saleResponse struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	Date          string             `json:"date"`
	Time          string             `json:"time,omitempty"`
	Items         []saleItemResponse `json:"items,omitempty"`
	TotalAmount   core.Money         `json:"total_amount"`
	PaidAmount    core.Money         `json:"paid_amount"`
	BalanceChange core.Money         `json:"balance_change"`
	BalanceAfter  core.Money         `json:"balance_after"`
	PaymentStatus string             `json:"payment_status"`
	Notes         string             `json:"notes,omitempty"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
}

type purchaseResponse struct {
	ID                int64      `json:"id"`
	FarmerID          int64      `json:"farmer_id"`
	FarmerName        string     `json:"farmer_name"`
	Date              string     `json:"date"`
	Time              string     `json:"time,omitempty"`
	FishCategoryID    int64      `json:"fish_category_id"`
	FishName          string     `json:"fish_name"`
	WeightKg          float64    `json:"weight_kg"`
	PricePerUnit      core.Money `json:"price_per_unit"`
	FishValue         core.Money `json:"fish_value"`
	CommissionPercent float64    `json:"commission_percent"`
	Commission        core.Money `json:"commission"`
	HandlingCharges   core.Money `json:"handling_charges"`
	IceCharges        core.Money `json:"ice_charges"`
	LabourCharges     core.Money `json:"labour_charges"`
	ExtraCharges      core.Money `json:"extra_charges"`
	TotalAmount       core.Money `json:"total_amount"`
	PaidAmount        core.Money `json:"paid_amount"`
	BalanceChange     core.Money `json:"balance_change"`
	BalanceAfter      core.Money `json:"balance_after"`
	PaymentStatus     string     `json:"payment_status"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
}

type summaryResponse struct {
	Date                   string     `json:"date"`
	TotalSales             core.Money `json:"total_sales"`
	TotalCashReceived      core.Money `json:"total_cash_received"`
	TotalOutstandingChange core.Money `json:"total_outstanding_change"`
	TransactionsCount      int64      `json:"transactions_count"`
}

type dashboardResponse struct {
	TodaySales            core.Money `json:"today_sales"`
	TodayCash             core.Money `json:"today_cash"`
	TodayTransactions     int64      `json:"today_transactions"`
	PendingCustomersCount int64      `json:"pending_customers_count"`
	PendingCustomersTotal core.Money `json:"pending_customers_total"`
	OwedFarmersCount      int64      `json:"owed_farmers_count"`
	OwedFarmersTotal      core.Money `json:"owed_farmers_total"`
	TotalCustomers        int64      `json:"total_customers"`
	TotalFarmers          int64      `json:"total_farmers"`
	ActiveFishCategories  int64      `json:"active_fish_categories"`
}

func customerToResponse(c *core.Customer) entityResponse {
	return entityResponse{
		ID: c.ID, Name: c.Name, Phone: c.Phone, Address: c.Address,
		Balance: c.Balance, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func farmerToResponse(f *core.Farmer) entityResponse {
	return entityResponse{
		ID: f.ID, Name: f.Name, Phone: f.Phone, Address: f.Address,
		Balance: f.Balance, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt,
	}
}

func categoryToResponse(fc *core.FishCategory) categoryResponse {
	return categoryResponse{
		ID: fc.ID, Name: fc.Name, PricePerUnit: fc.PricePerUnit,
		Active: fc.Active, CreatedAt: fc.CreatedAt, UpdatedAt: fc.UpdatedAt,
	}
}

func saleToResponse(t *core.Transaction) saleResponse {
	items := make([]saleItemResponse, len(t.Items))
	for i, item := range t.Items {
		items[i] = saleItemResponse{
			ID:             item.ID,
			FishCategoryID: item.FishCategoryID,
			FishName:       item.FishName,
			WeightKg:       item.WeightKg,
			PricePerUnit:   item.PricePerUnit,
			Subtotal:       item.Subtotal,
		}
	}
	return saleResponse{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		CustomerName:  t.CustomerName,
		Date:          t.Date.String(),
		Time:          t.Time,
		Items:         items,
		TotalAmount:   t.TotalAmount,
		PaidAmount:    t.PaidAmount,
		BalanceChange: t.BalanceChange,
		BalanceAfter:  t.BalanceAfter,
		PaymentStatus: string(t.PaymentStatus),
		Notes:         t.Notes,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
	}
}

func purchaseToResponse(t *core.FarmerTransaction) purchaseResponse {
	return purchaseResponse{
		ID:                t.ID,
		FarmerID:          t.FarmerID,
		FarmerName:        t.FarmerName,
		Date:              t.Date.String(),
		Time:              t.Time,
		FishCategoryID:    t.FishCategoryID,
		FishName:          t.FishName,
		WeightKg:          t.WeightKg,
		PricePerUnit:      t.PricePerUnit,
		FishValue:         t.FishValue,
		CommissionPercent: t.CommissionPercent,
		Commission:        t.Commission,
		HandlingCharges:   t.HandlingCharges,
		IceCharges:        t.IceCharges,
		LabourCharges:     t.LabourCharges,
		ExtraCharges:      t.ExtraCharges,
		TotalAmount:       t.TotalAmount,
		PaidAmount:        t.PaidAmount,
		BalanceChange:     t.BalanceChange,
		BalanceAfter:      t.BalanceAfter,
		PaymentStatus:     string(t.PaymentStatus),
		Notes:             t.Notes,
		Status:            string(t.Status),
		CreatedAt:         t.CreatedAt,
	}
}

func summaryToResponse(s *core.DailySummary) summaryResponse {
	return summaryResponse{
		Date:                   s.Date.String(),
		TotalSales:             s.TotalSales,
		TotalCashReceived:      s.TotalCashReceived,
		TotalOutstandingChange: s.TotalOutstandingChange,
		TransactionsCount:      s.TransactionsCount,
	}
}
