package core

import (
	"strings"
	"time"
)

// UnitWeightKg is the reference weight unit all per-unit prices are quoted
// against (40 kg, one maund in the local trade).
const UnitWeightKg = 40

// Sanity bounds carried over from the intake rules: prices and weights far
// outside normal market range are rejected up front.
const (
	MaxPrice    = 10_000_000
	MaxWeightKg = 50_000
)

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"

	TxnCompleted TxnStatus = "completed"
	TxnVoided    TxnStatus = "voided"

	EntityCustomer EntityKind = "customer"
	EntityFarmer   EntityKind = "farmer"
)

type (
	PaymentStatus string
	TxnStatus     string
	EntityKind    string

	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	// Customer buys fish from the market. Balance sign convention:
	// negative = customer owes the business, positive = prepaid credit.
	// Balance is derived from transaction history on every read; the
	// stored column is a cache.
	Customer struct {
		ID        int64
		Name      string
		Phone     string
		Address   string
		Balance   Money
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Farmer supplies fish to the market. Balance sign convention is the
	// inverse of Customer: negative = the business owes the farmer,
	// positive = the farmer holds credit with the business.
	Farmer struct {
		ID        int64
		Name      string
		Phone     string
		Address   string
		Balance   Money
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// FishCategory is a price-list entry. Inactive categories are excluded
	// from new transactions but kept for historical line items.
	FishCategory struct {
		ID           int64
		Name         string
		PricePerUnit Money
		Active       bool
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// LineItem is one fish entry on a sale bill. FishName and PricePerUnit
	// are snapshots taken at sale time so the item survives category
	// renames and price changes.
	LineItem struct {
		ID             int64
		TransactionID  int64
		FishCategoryID int64
		FishName       string
		WeightKg       float64
		PricePerUnit   Money
		Subtotal       Money
	}

	// Transaction is a customer sale: header plus line items.
	// BalanceAfter is a point-in-time receipt snapshot; it is never
	// re-validated after later edits and must not be treated as the
	// customer's current balance.
	Transaction struct {
		ID            int64
		CustomerID    int64
		CustomerName  string
		Date          Date
		Time          string
		Items         []LineItem
		TotalAmount   Money
		PaidAmount    Money
		BalanceChange Money
		BalanceAfter  Money
		PaymentStatus PaymentStatus
		Notes         string
		Status        TxnStatus
		CreatedAt     time.Time
	}

	// FarmerTransaction is a purchase from a farmer. TotalAmount is the
	// net payable: fish value minus commission and fixed deductions.
	FarmerTransaction struct {
		ID                int64
		FarmerID          int64
		FarmerName        string
		Date              Date
		Time              string
		FishCategoryID    int64
		FishName          string
		WeightKg          float64
		PricePerUnit      Money
		FishValue         Money
		CommissionPercent float64
		Commission        Money
		HandlingCharges   Money
		IceCharges        Money
		LabourCharges     Money
		ExtraCharges      Money
		TotalAmount       Money
		PaidAmount        Money
		BalanceChange     Money
		BalanceAfter      Money
		PaymentStatus     PaymentStatus
		Notes             string
		Status            TxnStatus
		CreatedAt         time.Time
	}

	// DailySummary is the per-date rollup of one transaction stream.
	// It is a cache: replaying the day's non-voided transactions must
	// reproduce it exactly.
	DailySummary struct {
		Date              Date
		TotalSales        Money
		TotalCashReceived Money
		// TotalOutstandingChange is the signed net of the day's
		// -balance_change contributions, not a balance.
		TotalOutstandingChange Money
		TransactionsCount      int64
	}

	// DashboardStats are read-only aggregates for the landing view.
	// Pending figures come from derived balances, not the cached column.
	DashboardStats struct {
		TodaySales            Money
		TodayCash             Money
		TodayTransactions     int64
		PendingCustomersCount int64
		PendingCustomersTotal Money
		OwedFarmersCount      int64
		OwedFarmersTotal      Money
		TotalCustomers        int64
		TotalFarmers          int64
		ActiveFishCategories  int64
	}
)

// NewDate builds a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, Invalid("date", "must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// String renders the date as YYYY-MM-DD, the storage key format.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return Invalid("date", "cannot be empty")
	}
	return nil
}

// DerivePaymentStatus applies the fixed rule: paid iff paid >= total,
// partial iff 0 < paid < total, unpaid iff paid == 0.
func DerivePaymentStatus(paid, total Money) PaymentStatus {
	switch {
	case paid.Cmp(total) >= 0:
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// ValidateEntityName enforces the shared customer/farmer name rule.
func ValidateEntityName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 2 {
		return Invalid("name", "too short (minimum 2 characters)")
	}
	if len(trimmed) > 100 {
		return Invalid("name", "too long (maximum 100 characters)")
	}
	return nil
}

// ValidateAddress enforces the optional address rule.
func ValidateAddress(address string) error {
	if len(address) > 500 {
		return Invalid("address", "too long (maximum 500 characters)")
	}
	return nil
}

// ValidateWeight enforces positive, bounded weights.
func ValidateWeight(weightKg float64) error {
	if !(weightKg > 0) {
		return Invalid("weight", "must be greater than 0")
	}
	if weightKg > MaxWeightKg {
		return Invalid("weight", "too large (maximum 50,000 kg)")
	}
	return nil
}

// ValidatePrice enforces positive, bounded unit prices.
func ValidatePrice(price Money) error {
	if !price.IsPositive() {
		return Invalid("price", "must be greater than 0")
	}
	if price.Cmp(MoneyFromCents(MaxPrice*100)) > 0 {
		return Invalid("price", "too large (maximum 10,000,000)")
	}
	return nil
}

// ValidatePaidAmount rejects negative paid amounts and amounts far beyond
// the bill total, which almost always indicate a data-entry slip.
func ValidatePaidAmount(paid, total Money) error {
	if paid.IsNegative() {
		return Invalid("paid_amount", "cannot be negative")
	}
	if total.IsPositive() && paid.Cmp(total.Add(total)) > 0 {
		return Invalid("paid_amount", "exceeds twice the total, please verify")
	}
	return nil
}

func (c Customer) Validate() error {
	if err := ValidateEntityName(c.Name); err != nil {
		return err
	}
	return ValidateAddress(c.Address)
}

func (f Farmer) Validate() error {
	if err := ValidateEntityName(f.Name); err != nil {
		return err
	}
	return ValidateAddress(f.Address)
}

func (fc FishCategory) Validate() error {
	name := strings.TrimSpace(fc.Name)
	if name == "" {
		return Invalid("name", "fish name is required")
	}
	if len(name) > 50 {
		return Invalid("name", "too long (maximum 50 characters)")
	}
	return ValidatePrice(fc.PricePerUnit)
}

func (li LineItem) Validate() error {
	if li.FishCategoryID <= 0 {
		return Invalid("fish_category_id", "is required")
	}
	if strings.TrimSpace(li.FishName) == "" {
		return Invalid("fish_name", "is required")
	}
	if err := ValidateWeight(li.WeightKg); err != nil {
		return err
	}
	return ValidatePrice(li.PricePerUnit)
}
