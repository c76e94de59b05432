package core

import (
	"errors"
	"testing"
)

func TestDerivePaymentStatus(t *testing.T) {
	m := func(s string) Money {
		v, err := ParseMoney(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return v
	}

	cases := []struct {
		name  string
		paid  string
		total string
		want  PaymentStatus
	}{
		{"exact", "2000.00", "2000.00", StatusPaid},
		{"overpaid", "2500.00", "2000.00", StatusPaid},
		{"partial", "1500.00", "2000.00", StatusPartial},
		{"one cent short", "1999.99", "2000.00", StatusPartial},
		{"one cent paid", "0.01", "2000.00", StatusPartial},
		{"nothing", "0", "2000.00", StatusUnpaid},
		{"zero total zero paid", "0", "0", StatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePaymentStatus(m(tc.paid), m(tc.total)); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestValidateEntityName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"Ali Hassan", true},
		{"Ab", true},
		{"A", false},
		{"  A  ", false},
		{"", false},
		{string(make([]byte, 101)), false},
	}
	for _, tc := range cases {
		err := ValidateEntityName(tc.name)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error", tc.name)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q expected validation error, got %v", tc.name, err)
			}
		}
	}
}

func TestValidatePaidAmount(t *testing.T) {
	m := func(s string) Money {
		v, _ := ParseMoney(s)
		return v
	}

	if err := ValidatePaidAmount(m("4000"), m("2000")); err != nil {
		t.Fatalf("twice the total is allowed: %v", err)
	}
	if err := ValidatePaidAmount(m("4000.01"), m("2000")); err == nil {
		t.Fatal("expected error beyond twice the total")
	}
	if err := ValidatePaidAmount(m("-1"), m("2000")); err == nil {
		t.Fatal("expected error for negative paid amount")
	}
	// zero-total bills accept any non-negative paid amount
	if err := ValidatePaidAmount(m("100"), m("0")); err != nil {
		t.Fatalf("unexpected error on zero total: %v", err)
	}
}

func TestValidateWeightAndPrice(t *testing.T) {
	if err := ValidateWeight(0); err == nil {
		t.Fatal("zero weight must fail")
	}
	if err := ValidateWeight(50001); err == nil {
		t.Fatal("weight above bound must fail")
	}
	if err := ValidateWeight(80); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	zero := Money{}
	if err := ValidatePrice(zero); err == nil {
		t.Fatal("zero price must fail")
	}
	huge := MoneyFromCents((MaxPrice + 1) * 100)
	if err := ValidatePrice(huge); err == nil {
		t.Fatal("price above bound must fail")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-01-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2026-01-15" {
		t.Fatalf("expected 2026-01-15, got %s", d)
	}
	if _, err := ParseDate("15/01/2026"); err == nil {
		t.Fatal("expected error for wrong format")
	}
}

func TestFishCategoryValidate(t *testing.T) {
	price, _ := ParseMoney("1200")
	fc := FishCategory{Name: "Rohu", PricePerUnit: price}
	if err := fc.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	fc.Name = ""
	if err := fc.Validate(); err == nil {
		t.Fatal("empty name must fail")
	}
	fc.Name = string(make([]byte, 51))
	if err := fc.Validate(); err == nil {
		t.Fatal("long name must fail")
	}
}
