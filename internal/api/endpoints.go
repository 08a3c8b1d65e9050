package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/findosh/wiprox/internal/models"
	"github.com/shopspring/decimal"
)

// Credentials is the login form
type Credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterInput is the registration form
type RegisterInput struct {
	FullName           string `json:"full_name"`
	Phone              string `json:"phone"`
	Password           string `json:"password"`
	WithdrawalPassword string `json:"withdrawal_password"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// Result is the acknowledgement of a mutation
type Result struct {
	Message string `json:"message"`
}

// InvestRequest buys a plan
type InvestRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Product     string          `json:"product"`
	DailyIncome decimal.Decimal `json:"dailyIncome"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
	Days        int             `json:"days,string"`
}

// PaymentRequest starts or confirms a gateway payment
type PaymentRequest struct {
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	UTRNumber     string               `json:"utrNumber,omitempty"`
}

// Payment is the backend's view of a gateway payment
type Payment struct {
	ID      models.FlexID `json:"id"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
	UPIID   string        `json:"upiId,omitempty"`
}

type addBankRequest struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_no"`
	BankName      string `json:"bank_name"`
	IFSCCode      string `json:"ifsc_code"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

var errMissingToken = errors.New("auth response has no token")

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, in Credentials) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.Post(ctx, "/users/login", in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errMissingToken
	}
	return &out, nil
}

// Register creates an account, optionally under a referrer's code
func (c *Client) Register(ctx context.Context, in RegisterInput, referralCode string) (*AuthResponse, error) {
	path := "/users/register"
	if code := strings.TrimSpace(referralCode); code != "" {
		path += "/" + url.PathEscape(code)
	}
	var out AuthResponse
	if err := c.Post(ctx, path, in, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errMissingToken
	}
	return &out, nil
}

// Me fetches the authenticated user's financial profile
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.Get(ctx, "/users/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyPlans lists purchased plans. The list may arrive bare, under "data" or
// under "plans".
func (c *Client) MyPlans(ctx context.Context) ([]models.PurchasedPlan, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, "/users/myPlans", &raw); err != nil {
		return nil, err
	}
	return decodePlanList(raw)
}

func decodePlanList(raw json.RawMessage) ([]models.PurchasedPlan, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.PurchasedPlan{}, nil
	}
	if raw[0] == '[' {
		var plans []models.PurchasedPlan
		if err := json.Unmarshal(raw, &plans); err != nil {
			return nil, fmt.Errorf("failed to decode plans: %w", err)
		}
		return plans, nil
	}
	var wrapped struct {
		Plans []models.PurchasedPlan `json:"plans"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}
	if wrapped.Plans == nil {
		return []models.PurchasedPlan{}, nil
	}
	return wrapped.Plans, nil
}

var recordPaths = map[models.RecordKind]string{
	models.RecordIncome:     "/users/income-Records",
	models.RecordWithdrawal: "/users/withdraw-Records",
	models.RecordRecharge:   "/users/recharge-records",
}

// Records lists ledger entries of one kind as the backend returns them
func (c *Client) Records(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	path, ok := recordPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	var records []models.Record
	if err := c.Get(ctx, path, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	for i := range records {
		records[i].Normalize(kind)
	}
	return records, nil
}

// IncomeRecords lists earnings
func (c *Client) IncomeRecords(ctx context.Context) ([]models.Record, error) {
	return c.Records(ctx, models.RecordIncome)
}

// WithdrawRecords lists withdrawal requests
func (c *Client) WithdrawRecords(ctx context.Context) ([]models.Record, error) {
	return c.Records(ctx, models.RecordWithdrawal)
}

// RechargeRecords lists wallet top-ups
func (c *Client) RechargeRecords(ctx context.Context) ([]models.Record, error) {
	return c.Records(ctx, models.RecordRecharge)
}

// RechargeWallet credits the wallet directly
func (c *Client) RechargeWallet(ctx context.Context, amount decimal.Decimal) (*Result, error) {
	var out Result
	if err := c.Post(ctx, "/users/recharge-wallet", amountRequest{Amount: amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvestMoney buys a plan
func (c *Client) InvestMoney(ctx context.Context, in InvestRequest) (*Result, error) {
	var out Result
	if err := c.Post(ctx, "/users/invest-money", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BankDetails fetches the bound bank account, if any
func (c *Client) BankDetails(ctx context.Context) (*models.BankDetails, error) {
	var out models.BankDetails
	if err := c.Get(ctx, "/users/bank-details", &out); err != nil {
		return nil, err
	}
	if out.Account == nil {
		out.Exists = false
	}
	return &out, nil
}

// AddBank binds a bank account
func (c *Client) AddBank(ctx context.Context, account models.BankAccount) (*Result, error) {
	body := addBankRequest{
		AccountName:   account.AccountName,
		AccountNumber: account.AccountNumber,
		BankName:      account.BankName,
		IFSCCode:      account.IFSCCode,
	}
	var out Result
	if err := c.Post(ctx, "/users/add-bank", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw requests a payout to the bound bank account
func (c *Client) Withdraw(ctx context.Context, amount decimal.Decimal) (*Result, error) {
	var out Result
	if err := c.Post(ctx, "/users/withdraw", amountRequest{Amount: amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitiatePayment opens a gateway payment
func (c *Client) InitiatePayment(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod) (*Payment, error) {
	var out Payment
	req := PaymentRequest{Amount: amount, PaymentMethod: method}
	if err := c.Post(ctx, "/payments/initiate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment submits the UTR of a completed transfer
func (c *Client) VerifyPayment(ctx context.Context, amount decimal.Decimal, utr string, method models.PaymentMethod) (*Payment, error) {
	var out Payment
	req := PaymentRequest{Amount: amount, PaymentMethod: method, UTRNumber: strings.TrimSpace(utr)}
	if err := c.Post(ctx, "/payments/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
