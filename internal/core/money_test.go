package core

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.50", true},
		{"-1", "-1.00", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyRoundIdempotent(t *testing.T) {
	for _, s := range []string{"0", "0.005", "12.34", "-7.777", "99999999.99"} {
		m, err := ParseMoney(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if !m.Round().Equal(m.Round().Round()) {
			t.Fatalf("round not idempotent for %q", s)
		}
	}
}

func TestMoneyCentsRoundTrip(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{150000, "1500.00"},
		{-50000, "-500.00"},
	}
	for _, tc := range cases {
		m := MoneyFromCents(tc.cents)
		if m.String() != tc.want {
			t.Fatalf("cents %d: expected %s, got %s", tc.cents, tc.want, m)
		}
		if m.Cents() != tc.cents {
			t.Fatalf("cents %d: round trip gave %d", tc.cents, m.Cents())
		}
	}
}

func TestMoneyPerUnit(t *testing.T) {
	price, _ := ParseMoney("1000")

	// 80 kg at Rs.1000 per 40 kg unit = 2000.00
	sub, err := price.PerUnit(80)
	if err != nil {
		t.Fatalf("per unit: %v", err)
	}
	if sub.String() != "2000.00" {
		t.Fatalf("expected 2000.00, got %s", sub)
	}

	// fractional weights still round to money precision
	sub, err = price.PerUnit(12.5)
	if err != nil {
		t.Fatalf("per unit: %v", err)
	}
	if sub.String() != "312.50" {
		t.Fatalf("expected 312.50, got %s", sub)
	}

	if _, err := price.PerUnit(-1); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestMoneyPercent(t *testing.T) {
	value, _ := ParseMoney("2000")
	commission, err := value.Percent(6.25)
	if err != nil {
		t.Fatalf("percent: %v", err)
	}
	if commission.String() != "125.00" {
		t.Fatalf("expected 125.00, got %s", commission)
	}
	if _, err := value.Percent(-5); err == nil {
		t.Fatal("expected error for negative percent")
	}
}

func TestMoneyAddSubNoDrift(t *testing.T) {
	// Repeated addition of 0.10 must land exactly on 1.00; the float64
	// equivalent would not.
	dime, _ := ParseMoney("0.10")
	sum := Money{}
	for i := 0; i < 10; i++ {
		sum = sum.Add(dime)
	}
	if sum.String() != "1.00" {
		t.Fatalf("expected 1.00, got %s", sum)
	}

	paid, _ := ParseMoney("1500.00")
	total, _ := ParseMoney("2000.00")
	if got := paid.Sub(total).String(); got != "-500.00" {
		t.Fatalf("expected -500.00, got %s", got)
	}
}

func TestMoneyFromFloatRejectsNonFinite(t *testing.T) {
	bad := []float64{nan(), inf(1), inf(-1)}
	for _, f := range bad {
		if _, err := MoneyFromFloat(f); err == nil {
			t.Fatalf("expected error for %v", f)
		}
	}
}

func nan() float64      { var z float64; return z / z }
func inf(s int) float64 { return float64(s) / 0 * 1e308 }
