package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/findosh/wiprox/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// firstLevelCommission is paid to the direct inviter on every investment
var firstLevelCommission = decimal.NewFromInt(15)

type payment struct {
	ID        string               `json:"id"`
	UserID    string               `json:"-"`
	Amount    decimal.Decimal      `json:"amount"`
	Method    models.PaymentMethod `json:"paymentMethod"`
	Status    string               `json:"status"`
	UPIID     string               `json:"upiId"`
	CreatedAt time.Time            `json:"created_at"`
}

func (s *Server) newRecord(kind models.RecordKind, amount decimal.Decimal, status, description string) models.Record {
	return models.Record{
		ID:          models.FlexID(uuid.NewString()),
		Kind:        kind,
		Amount:      amount,
		Status:      status,
		Description: description,
		CreatedAt:   s.cfg.Now().UTC(),
	}
}

func (s *Server) myPlans(w http.ResponseWriter, r *http.Request) {
	var plans []models.PurchasedPlan
	s.withAccount(r, func(a *account) {
		plans = append([]models.PurchasedPlan{}, a.Plans...)
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}

// records serves one ledger, newest first. Withdrawal records come back bare;
// the others are wrapped in a data envelope, as the real backend does.
func (s *Server) records(kind models.RecordKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []models.Record
		s.withAccount(r, func(a *account) {
			out = append([]models.Record{}, a.Records[kind]...)
		})
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		if kind == models.RecordWithdrawal {
			writeJSON(w, http.StatusOK, out)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": out})
	}
}

type amountBody struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) rechargeWallet(w http.ResponseWriter, r *http.Request) {
	var in amountBody
	if err := decodeBody(r, &in); err != nil || !in.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	s.withAccount(r, func(a *account) {
		a.Balance = a.Balance.Add(in.Amount)
		rec := s.newRecord(models.RecordRecharge, in.Amount, models.StatusCompleted, "Wallet Recharge")
		a.Records[models.RecordRecharge] = append(a.Records[models.RecordRecharge], rec)
	})
	writeMessage(w, "Wallet recharged successfully")
}

func (s *Server) investMoney(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount      decimal.Decimal `json:"amount"`
		Product     string          `json:"product"`
		DailyIncome decimal.Decimal `json:"dailyIncome"`
		TotalIncome decimal.Decimal `json:"totalIncome"`
		Days        json.Number     `json:"days"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	days, err := strconv.Atoi(in.Days.String())
	if err != nil || days <= 0 || !in.Amount.IsPositive() || strings.TrimSpace(in.Product) == "" {
		writeError(w, http.StatusBadRequest, "Invalid plan details")
		return
	}

	var status int
	var message string
	s.withAccount(r, func(a *account) {
		if a.Balance.LessThan(in.Amount) {
			status, message = http.StatusBadRequest, "Insufficient balance. Please recharge your wallet."
			return
		}
		now := s.cfg.Now().UTC()
		a.Balance = a.Balance.Sub(in.Amount)
		a.TotalInvested = a.TotalInvested.Add(in.Amount)
		a.Plans = append(a.Plans, models.PurchasedPlan{
			ID:          models.FlexID(uuid.NewString()),
			Product:     in.Product,
			Amount:      in.Amount,
			DailyIncome: in.DailyIncome,
			TotalIncome: in.TotalIncome,
			StartDate:   now,
			EndDate:     now.AddDate(0, 0, days),
		})
		s.payCommissionLocked(a, in.Amount)
		status, message = http.StatusOK, "Investment successful"
	})
	if status != http.StatusOK {
		writeError(w, status, message)
		return
	}
	writeMessage(w, message)
}

// payCommissionLocked credits the direct inviter. Second and third levels
// carry no rebate.
func (s *Server) payCommissionLocked(investor *account, amount decimal.Decimal) {
	if investor.ReferredBy == "" {
		return
	}
	inviter, ok := s.accounts[s.byReferral[investor.ReferredBy]]
	if !ok {
		return
	}
	commission := amount.Mul(firstLevelCommission).Div(decimal.NewFromInt(100)).Round(2)
	inviter.Balance = inviter.Balance.Add(commission)
	inviter.WithdrawalBalance = inviter.WithdrawalBalance.Add(commission)
	inviter.TotalEarnings = inviter.TotalEarnings.Add(commission)
	rec := s.newRecord(models.RecordIncome, commission, models.StatusCompleted, "Referral Bonus")
	rec.Plan = "15% Commission"
	inviter.Records[models.RecordIncome] = append(inviter.Records[models.RecordIncome], rec)
}

func (s *Server) bankDetails(w http.ResponseWriter, r *http.Request) {
	var out models.BankDetails
	s.withAccount(r, func(a *account) {
		if a.Bank != nil {
			b := *a.Bank
			out = models.BankDetails{Exists: true, Account: &b}
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addBank(w http.ResponseWriter, r *http.Request) {
	var in struct {
		AccountName   string `json:"account_name"`
		AccountNumber string `json:"account_no"`
		BankName      string `json:"bank_name"`
		IFSCCode      string `json:"ifsc_code"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	acct := models.BankAccount{
		AccountName:   strings.TrimSpace(in.AccountName),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		BankName:      strings.TrimSpace(in.BankName),
		IFSCCode:      strings.ToUpper(strings.TrimSpace(in.IFSCCode)),
	}
	if acct.AccountName == "" || acct.AccountNumber == "" || acct.BankName == "" || acct.IFSCCode == "" {
		writeError(w, http.StatusBadRequest, "All bank fields are required")
		return
	}
	s.withAccount(r, func(a *account) { a.Bank = &acct })
	writeMessage(w, "Bank account added successfully")
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var in amountBody
	if err := decodeBody(r, &in); err != nil || !in.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	rules := s.cfg.Rules

	var status int
	var message string
	s.withAccount(r, func(a *account) {
		switch {
		case a.Bank == nil:
			status, message = http.StatusBadRequest, "Please add a bank account first"
		case !rules.InWindow(s.cfg.Now()):
			status, message = http.StatusBadRequest, "Withdrawals are only allowed between 7:00 AM and 6:00 PM"
		case in.Amount.LessThan(rules.Minimum):
			status, message = http.StatusBadRequest, fmt.Sprintf("Minimum withdrawal amount is %s", models.FormatRupees(rules.Minimum))
		case in.Amount.GreaterThan(rules.Maximum):
			status, message = http.StatusBadRequest, fmt.Sprintf("Maximum withdrawal amount is %s", models.FormatRupees(rules.Maximum))
		case a.WithdrawalBalance.LessThan(in.Amount):
			status, message = http.StatusBadRequest, "Insufficient withdrawal balance"
		default:
			tax := rules.Tax(in.Amount)
			a.WithdrawalBalance = a.WithdrawalBalance.Sub(in.Amount)
			a.TotalWithdrawal = a.TotalWithdrawal.Add(in.Amount)
			rec := s.newRecord(models.RecordWithdrawal, in.Amount, models.StatusProcessing,
				fmt.Sprintf("To %s, %s after tax", a.Bank.MaskedNumber(), models.FormatRupees(in.Amount.Sub(tax))))
			rec.TransactionID = "WD" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
			a.Records[models.RecordWithdrawal] = append(a.Records[models.RecordWithdrawal], rec)
			status, message = http.StatusOK, "Withdrawal requested successfully"
		}
	})
	if status != http.StatusOK {
		writeError(w, status, message)
		return
	}
	writeMessage(w, message)
}

type paymentBody struct {
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	UTRNumber     string               `json:"utrNumber"`
}

func (s *Server) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var in paymentBody
	if err := decodeBody(r, &in); err != nil || !in.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	if _, ok := models.ParsePaymentMethod(string(in.PaymentMethod)); !ok {
		writeError(w, http.StatusBadRequest, "Unsupported payment method")
		return
	}

	var p *payment
	s.withAccount(r, func(a *account) {
		p = &payment{
			ID:        uuid.NewString(),
			UserID:    a.ID,
			Amount:    in.Amount,
			Method:    in.PaymentMethod,
			Status:    "initiated",
			UPIID:     s.cfg.UPIID,
			CreatedAt: s.cfg.Now().UTC(),
		}
		s.payments[p.ID] = p
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": p})
}

// verifyPayment records the transfer for manual review. The balance is only
// credited once an operator confirms the UTR, which the mock never does.
func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var in paymentBody
	if err := decodeBody(r, &in); err != nil || !in.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	utr := strings.TrimSpace(in.UTRNumber)
	if utr == "" {
		writeError(w, http.StatusBadRequest, "UTR number is required")
		return
	}

	s.withAccount(r, func(a *account) {
		rec := s.newRecord(models.RecordRecharge, in.Amount, models.StatusPending, in.PaymentMethod.DisplayName()+" Recharge")
		rec.TransactionID = utr
		a.Records[models.RecordRecharge] = append(a.Records[models.RecordRecharge], rec)
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "pending",
		"message": "Payment submitted for verification",
	})
}
