package models

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"¥1,234.56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1234", "1234"},
		{"", "0"},
		{"   ", "0"},
		{"not-a-number", "0"},
	}
	for _, tc := range cases {
		got := ParseMoney(tc.raw)
		if got.Decimal.String() != tc.want {
			t.Errorf("ParseMoney(%q) = %s, want %s", tc.raw, got.Decimal.String(), tc.want)
		}
	}
}

func TestMoneyAddIsExact(t *testing.T) {
	a := ParseMoney("0.10")
	b := ParseMoney("0.20")
	sum := a.Add(b)
	if sum.Decimal.String() != "0.3" {
		t.Fatalf("expected exact decimal sum, got %s", sum.Decimal.String())
	}
}

func TestMoneySummationOrderIndependent(t *testing.T) {
	values := []Money{ParseMoney("10.01"), ParseMoney("20.02"), ParseMoney("30.03")}

	forward := Zero
	for _, v := range values {
		forward = forward.Add(v)
	}
	backward := Zero
	for i := len(values) - 1; i >= 0; i-- {
		backward = backward.Add(values[i])
	}
	if !forward.Decimal.Equal(backward.Decimal) {
		t.Fatalf("decimal summation should be order independent: %s vs %s", forward.Decimal, backward.Decimal)
	}
}
