package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/screen"
)

var paymentMethods = []models.PaymentMethod{models.PaymentPaytm, models.PaymentPhonePe}

// RechargePage renders the recharge screen
func (h *Handler) RechargePage(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Recharge", "mine")
	if !h.profileData(w, r, data) {
		return
	}
	data["QuickAmounts"] = models.RechargeQuickAmounts
	h.render(w, "recharge.html", data)
}

// Recharge validates the amount and continues to payment. With mode=direct
// it credits the wallet through the direct recharge endpoint instead.
func (h *Handler) Recharge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/recharge", "Invalid request")
		return
	}
	raw := formValue(r, "amount")

	if formValue(r, "mode") == "direct" {
		res, err := h.wallet.RechargeWallet(r.Context(), raw)
		if err != nil {
			if h.sessionExpired(w, r, err) {
				return
			}
			h.rechargeFailed(w, r, raw, screen.Message(err, "Recharge failed. Please try again."))
			return
		}
		h.notice(w, r, noticeText(res.Message, "Recharge successful"), "/mine")
		return
	}

	amount, err := h.wallet.PrepareRecharge(raw)
	if err != nil {
		h.rechargeFailed(w, r, raw, screen.Message(err, "Please enter a valid amount"))
		return
	}
	h.redirect(w, r, "/payment?amount="+url.QueryEscape(amount.String()))
}

func (h *Handler) rechargeFailed(w http.ResponseWriter, r *http.Request, raw, message string) {
	data := h.page(r, "Recharge", "mine")
	if !h.profileData(w, r, data) {
		return
	}
	data["QuickAmounts"] = models.RechargeQuickAmounts
	data["Amount"] = raw
	data["Error"] = message
	h.renderStatus(w, http.StatusBadRequest, "recharge.html", data)
}

// PaymentPage renders the payment screen for the amount in the query
func (h *Handler) PaymentPage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("amount")
	amount, err := h.wallet.PrepareRecharge(raw)
	if err != nil {
		h.redirectWithError(w, r, "/recharge", screen.Message(err, "Please enter a valid amount"))
		return
	}
	data := h.paymentData(r, amount.String())
	h.render(w, "payment.html", data)
}

func (h *Handler) paymentData(r *http.Request, amount string) map[string]interface{} {
	data := h.page(r, "Payment", "mine")
	data["Amount"] = amount
	data["Methods"] = paymentMethods
	data["Method"] = ""
	data["Window"] = int(models.PaymentWindow / time.Second)
	data["WindowText"] = "08:00"
	return data
}

// Payment handles both steps of the payment screen: action=initiate opens a
// gateway payment, action=verify submits the UTR of the transfer.
func (h *Handler) Payment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/recharge", "Invalid request")
		return
	}
	amount := formValue(r, "amount")
	method := formValue(r, "method")
	data := h.paymentData(r, amount)
	data["Method"] = method

	var err error
	switch formValue(r, "action") {
	case "verify":
		utr := formValue(r, "utr")
		data["UTR"] = utr
		data["UPIID"] = formValue(r, "upi_id")
		data["Initiated"] = true
		payment, verr := h.wallet.VerifyPayment(r.Context(), amount, utr, method)
		if verr == nil {
			h.notice(w, r, noticeText(payment.Message, "Payment submitted for verification"), "/recharge-record")
			return
		}
		err = verr
	default:
		payment, ierr := h.wallet.InitiatePayment(r.Context(), amount, method)
		if ierr == nil {
			data["Initiated"] = true
			data["Payment"] = payment
			data["UPIID"] = payment.UPIID
			data["Success"] = noticeText(payment.Message, "Payment initiated")
			h.render(w, "payment.html", data)
			return
		}
		err = ierr
	}

	if h.sessionExpired(w, r, err) {
		return
	}
	data["Error"] = screen.Message(err, "Payment failed. Please try again.")
	h.renderStatus(w, http.StatusBadRequest, "payment.html", data)
}

type withdrawView struct {
	Bank    screen.State[*models.BankDetails]
	Rules   models.WithdrawalRules
	Tax     string
	Amount  string
	Lines   []string
	HasBank bool
}

func (h *Handler) withdrawData(w http.ResponseWriter, r *http.Request, amount string) (map[string]interface{}, bool) {
	data := h.page(r, "Withdraw", "mine")
	if !h.profileData(w, r, data) {
		return nil, false
	}
	bank := screen.Run(r.Context(), "Failed to load bank details", func(ctx context.Context) (*models.BankDetails, error) {
		return h.wallet.BankDetails(ctx)
	})
	if h.sessionExpired(w, r, bank.Err) {
		return nil, false
	}

	rules := h.wallet.Rules()
	view := withdrawView{
		Bank:    bank,
		Rules:   rules,
		Amount:  amount,
		Lines:   rules.Instructions(),
		HasBank: bank.OK() && bank.Data.Exists,
	}
	if d, err := models.ParseAmount(amount); err == nil {
		view.Tax = models.FormatRupees(rules.Tax(d))
	}
	data["Withdraw"] = view
	return data, true
}

// WithdrawPage renders the withdraw screen
func (h *Handler) WithdrawPage(w http.ResponseWriter, r *http.Request) {
	data, ok := h.withdrawData(w, r, "")
	if !ok {
		return
	}
	h.render(w, "withdraw.html", data)
}

// Withdraw submits a withdrawal request
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/withdraw", "Invalid request")
		return
	}
	amount := formValue(r, "amount")

	res, err := h.wallet.Withdraw(r.Context(), amount)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		data, ok := h.withdrawData(w, r, amount)
		if !ok {
			return
		}
		data["Error"] = screen.Message(err, "Withdrawal failed. Please try again.")
		h.renderStatus(w, http.StatusBadRequest, "withdraw.html", data)
		return
	}

	h.notice(w, r, noticeText(res.Message, "Withdrawal requested successfully"), "/withdrawal-record")
}

// BankDetailsPage renders the bound account or the add-bank form
func (h *Handler) BankDetailsPage(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Bank Details", "mine")
	bank := screen.Run(r.Context(), "Failed to load bank details", func(ctx context.Context) (*models.BankDetails, error) {
		return h.wallet.BankDetails(ctx)
	})
	if h.sessionExpired(w, r, bank.Err) {
		return
	}
	data["Bank"] = bank
	data["Form"] = models.BankAccountInput{}
	h.render(w, "bank.html", data)
}

// AddBank binds a bank account
func (h *Handler) AddBank(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/bank-details", "Invalid request")
		return
	}
	in := models.BankAccountInput{
		AccountHolderName:    r.FormValue("account_holder_name"),
		AccountNumber:        r.FormValue("account_number"),
		ConfirmAccountNumber: r.FormValue("confirm_account_number"),
		IFSCCode:             r.FormValue("ifsc_code"),
		BankName:             r.FormValue("bank_name"),
		BranchName:           r.FormValue("branch_name"),
	}

	res, err := h.wallet.AddBank(r.Context(), in)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		data := h.page(r, "Bank Details", "mine")
		data["Form"] = in.Normalize()
		data["Error"] = screen.Message(err, "Failed to add bank account")
		h.renderStatus(w, http.StatusBadRequest, "bank.html", data)
		return
	}

	h.notice(w, r, noticeText(res.Message, "Bank account added successfully"), "/withdraw")
}

func noticeText(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
