package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"2.675", "2.68"},
		{"0.00", "0.00"},
	}
	for _, c := range cases {
		got := round2(decimal.RequireFromString(c.in))
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("round2(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestLineSubtotal(t *testing.T) {
	got := lineSubtotal(decimal.RequireFromString("19.995"), 3)
	want := decimal.RequireFromString("59.99")
	if !got.Equal(want) {
		t.Errorf("lineSubtotal = %s, want %s", got, want)
	}
}

func TestVATFor(t *testing.T) {
	rate := decimal.NewFromFloat(0.15)
	got := vatFor(decimal.RequireFromString("100.00"), rate)
	want := decimal.RequireFromString("15.00")
	if !got.Equal(want) {
		t.Errorf("vatFor = %s, want %s", got, want)
	}
}

func TestExVATFromIncVAT_BacksOutAt115(t *testing.T) {
	rate := decimal.NewFromFloat(0.15)
	got := exVATFromIncVAT(decimal.RequireFromString("115.00"), rate)
	want := decimal.RequireFromString("100.00")
	if !got.Equal(want) {
		t.Errorf("exVATFromIncVAT = %s, want %s", got, want)
	}
}

func TestSumSubtotals(t *testing.T) {
	lines := []InvoiceLine{
		{LineSubtotal: decimal.RequireFromString("10.00")},
		{LineSubtotal: decimal.RequireFromString("20.50")},
	}
	got := sumSubtotals(lines)
	want := decimal.RequireFromString("30.50")
	if !got.Equal(want) {
		t.Errorf("sumSubtotals = %s, want %s", got, want)
	}
}
