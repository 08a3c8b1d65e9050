package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountRequired = errors.New("enter an amount")
	ErrAmountInvalid  = errors.New("enter a valid amount")
)

// ParseAmount reads a user-typed rupee amount. Empty, non-numeric, zero and
// negative inputs are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrAmountRequired
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountInvalid
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrAmountInvalid
	}
	return d, nil
}

// FormatRupees renders an amount the way the screens show money
func FormatRupees(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return "₹" + d.StringFixed(0)
	}
	return "₹" + d.StringFixed(2)
}

// WithdrawalRules describes the withdrawal policy shown to users. Only the
// minimum is checked on the client; the backend enforces the rest.
type WithdrawalRules struct {
	Minimum    decimal.Decimal
	Maximum    decimal.Decimal
	OpensAt    time.Duration // offset from local midnight
	ClosesAt   time.Duration
	TaxRatePct decimal.Decimal
}

// DefaultWithdrawalRules returns the platform's published policy
func DefaultWithdrawalRules() WithdrawalRules {
	return WithdrawalRules{
		Minimum:    decimal.NewFromInt(170),
		Maximum:    decimal.NewFromInt(100000),
		OpensAt:    7 * time.Hour,
		ClosesAt:   18 * time.Hour,
		TaxRatePct: decimal.NewFromInt(10),
	}
}

// InWindow reports whether t falls inside the daily withdrawal window
func (r WithdrawalRules) InWindow(t time.Time) bool {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	return offset >= r.OpensAt && offset <= r.ClosesAt
}

// Tax returns the withholding on a withdrawal of the given amount
func (r WithdrawalRules) Tax(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(r.TaxRatePct).Div(decimal.NewFromInt(100)).Round(2)
}

// Instructions returns the policy lines shown under the withdraw form
func (r WithdrawalRules) Instructions() []string {
	return []string{
		fmt.Sprintf("The daily withdrawal time is from %s to %s", clock(r.OpensAt), clock(r.ClosesAt)),
		fmt.Sprintf("Single withdrawal amount between %s and %s", FormatRupees(r.Minimum), FormatRupees(r.Maximum)),
		fmt.Sprintf("Withdrawal tax rate: %s%%", r.TaxRatePct.String()),
		"Bank details need to be added only once",
	}
}

func clock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d:00", h, m)
}

// RechargeQuickAmounts are the preset buttons on the recharge screen
var RechargeQuickAmounts = []int64{285, 550, 775, 1255, 1999, 2500, 3600, 4900, 7499}

// PaymentMethod is the UPI app the user pays with
type PaymentMethod string

const (
	PaymentPaytm   PaymentMethod = "paytm"
	PaymentPhonePe PaymentMethod = "phonepe"
)

// ParsePaymentMethod accepts only the supported apps
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentPaytm:
		return PaymentPaytm, true
	case PaymentPhonePe:
		return PaymentPhonePe, true
	default:
		return "", false
	}
}

// DisplayName returns the app's brand name
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentPaytm:
		return "Paytm"
	case PaymentPhonePe:
		return "PhonePe"
	default:
		return string(m)
	}
}

// PaymentWindow is how long a started payment stays open on the payment screen
const PaymentWindow = 8 * time.Minute
