package report

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{150, "$150.00"},
		{1234.5, "$1,234.50"},
		{2297200.8603, "$2,297,200.86"},
		{-1234.5, "$-1,234.50"},
		{2.675, "$2.67"},
		{-0.001, "$-0.00"},
		{math.NaN(), "$nan"},
		{math.Inf(-1), "$-inf"},
	}

	for _, tt := range tests {
		if got := Currency(tt.in); got != tt.want {
			t.Errorf("Currency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCount(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		9994:    "9,994",
		1000000: "1,000,000",
	}
	for in, want := range tests {
		if got := Count(in); got != want {
			t.Errorf("Count(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{70.0 / 300.0 * 100, "23.33%"},
		{15.000000000000002, "15.00%"},
		{0, "0.00%"},
		{1234.5, "1234.50%"},
		{math.NaN(), "nan%"},
		{math.Inf(1), "inf%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.in); got != tt.want {
			t.Errorf("Percent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
