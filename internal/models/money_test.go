package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{"170", "170", nil},
		{" ₹1,255.50 ", "1255.5", nil},
		{"", "", ErrAmountRequired},
		{"   ", "", ErrAmountRequired},
		{"abc", "", ErrAmountInvalid},
		{"0", "", ErrAmountInvalid},
		{"-5", "", ErrAmountInvalid},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseAmount(%q): expected %v, got %v", tt.raw, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q): expected %s, got %s", tt.raw, tt.want, got)
		}
	}
}

func TestFormatRupees(t *testing.T) {
	if got := FormatRupees(decimal.NewFromInt(170)); got != "₹170" {
		t.Errorf("Expected ₹170, got %s", got)
	}
	if got := FormatRupees(decimal.RequireFromString("99.5")); got != "₹99.50" {
		t.Errorf("Expected ₹99.50, got %s", got)
	}
}

func TestWithdrawalRules_InWindow(t *testing.T) {
	r := DefaultWithdrawalRules()
	day := func(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }

	tests := []struct {
		at   time.Time
		want bool
	}{
		{day(6, 59), false},
		{day(7, 0), true},
		{day(12, 30), true},
		{day(18, 0), true},
		{day(18, 1), false},
	}
	for _, tt := range tests {
		if got := r.InWindow(tt.at); got != tt.want {
			t.Errorf("InWindow(%s): expected %v, got %v", tt.at.Format("15:04"), tt.want, got)
		}
	}
}

func TestWithdrawalRules_Tax(t *testing.T) {
	r := DefaultWithdrawalRules()
	if tax := r.Tax(decimal.NewFromInt(1000)); !tax.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected 100, got %s", tax)
	}
}

func TestWithdrawalRules_Instructions(t *testing.T) {
	lines := DefaultWithdrawalRules().Instructions()
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"07:00:00 to 18:00:00", "₹170 and ₹100000", "10%"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected instructions to mention %q, got %s", want, joined)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if m, ok := ParsePaymentMethod(" PhonePe "); !ok || m != PaymentPhonePe {
		t.Errorf("Expected phonepe, got %q %v", m, ok)
	}
	if _, ok := ParsePaymentMethod("gpay"); ok {
		t.Error("Expected unsupported method")
	}
	if PaymentPaytm.DisplayName() != "Paytm" {
		t.Errorf("Unexpected display name %s", PaymentPaytm.DisplayName())
	}
}
