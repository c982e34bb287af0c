package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "$0.00"},
		{"1234.56", "$1,234.56"},
		{"100", "$100.00"},
		{"999999.99", "$999,999.99"},
		{"1000000", "$1,000,000.00"},
		{"0.5", "$0.50"},
		{"50.1", "$50.10"},
		{"-5", "-$5.00"},
		{"2.345", "$2.35"},
	}
	for _, tt := range tests {
		got := Currency(decimal.RequireFromString(tt.input))
		if got != tt.want {
			t.Errorf("Currency(%s) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2024, time.February, 3, 14, 5, 0, 0, time.UTC)
	if got := Date(ts); got != "03/02/2024" {
		t.Errorf("Date() = %q", got)
	}
	if got := DateTime(ts); got != "03/02/2024 14:05" {
		t.Errorf("DateTime() = %q", got)
	}
	if got := Date(time.Time{}); got != "" {
		t.Errorf("Date(zero) = %q, want empty", got)
	}
}

func TestQuantity(t *testing.T) {
	if got := Quantity(12500); got != "12,500" {
		t.Errorf("Quantity(12500) = %q", got)
	}
	if got := Quantity(-7); got != "-7" {
		t.Errorf("Quantity(-7) = %q", got)
	}
}
