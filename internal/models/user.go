// Package models defines core domain types
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlexID is an identifier the backend may send either as a JSON string or a number
type FlexID string

// UnmarshalJSON accepts "42", 42 and null
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

// String returns the identifier text
func (id FlexID) String() string {
	return string(id)
}

// UserSummary is the minimal identity returned by login and registration
type UserSummary struct {
	ID       FlexID `json:"id"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone"`
}

// DisplayName returns the full name, falling back to the phone number
func (u *UserSummary) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Phone
}

// UserProfile is the financial snapshot served by the "current user" endpoint.
// It is read-only on the client: balances change server-side and are observed
// only by fetching again.
type UserProfile struct {
	ID                FlexID          `json:"id"`
	FullName          string          `json:"full_name"`
	Phone             string          `json:"phone"`
	Balance           decimal.Decimal `json:"balance"`
	TotalInvested     decimal.Decimal `json:"totalInvested"`
	TotalWithdrawal   decimal.Decimal `json:"totalWithdrawal"`
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	ReferralCode      string          `json:"referral_code"`
	WithdrawalBalance decimal.Decimal `json:"withdrawal_balance"`
	CreatedAt         *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time      `json:"updatedAt,omitempty"`
}

// Summary derives the identity part of the profile
func (p *UserProfile) Summary() *UserSummary {
	if p == nil {
		return nil
	}
	return &UserSummary{ID: p.ID, FullName: p.FullName, Phone: p.Phone}
}

// Session is the client-held proof of authentication plus cached identity
type Session struct {
	Token string       `json:"-"` // Never serialize
	User  *UserSummary `json:"user,omitempty"`
}

// IsAuthenticated is derived from the token alone; a profile fetch can be in
// flight or fail independently of token validity.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}
