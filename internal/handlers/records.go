package handlers

import (
	"context"
	"net/http"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/screen"
	"github.com/shopspring/decimal"
)

// recordPage describes one ledger screen
type recordPage struct {
	Kind       models.RecordKind
	TotalLabel string
	Total      func(p *models.UserProfile) decimal.Decimal
}

var recordPages = map[models.RecordKind]recordPage{
	models.RecordIncome: {
		Kind:       models.RecordIncome,
		TotalLabel: "Total Income",
		Total:      func(p *models.UserProfile) decimal.Decimal { return p.TotalEarnings },
	},
	models.RecordWithdrawal: {
		Kind:       models.RecordWithdrawal,
		TotalLabel: "Total Withdrawal",
		Total:      func(p *models.UserProfile) decimal.Decimal { return p.TotalWithdrawal },
	},
	models.RecordRecharge: {
		Kind:       models.RecordRecharge,
		TotalLabel: "Current Balance",
		Total:      func(p *models.UserProfile) decimal.Decimal { return p.Balance },
	},
}

// Records returns the handler for one ledger screen. Totals come from the
// profile aggregates, never from summing the listed rows.
func (h *Handler) Records(kind models.RecordKind) http.HandlerFunc {
	page := recordPages[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		data := h.page(r, kind.DisplayName(), "mine")
		if !h.profileData(w, r, data) {
			return
		}

		records := screen.Run(r.Context(), "Failed to load records", func(ctx context.Context) ([]models.Record, error) {
			return h.wallet.Records(ctx, kind)
		})
		if h.sessionExpired(w, r, records.Err) {
			return
		}

		data["Kind"] = string(kind)
		data["Heading"] = kind.DisplayName()
		data["Records"] = records
		if p, ok := data["Current"].(*models.UserProfile); ok && p != nil && page.Total != nil {
			data["TotalLabel"] = page.TotalLabel
			data["Total"] = page.Total(p)
		}
		h.render(w, "records.html", data)
	}
}

// MyPlans lists purchased plans
func (h *Handler) MyPlans(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "My Plans", "mine")
	plans := screen.Run(r.Context(), "Failed to load plans", func(ctx context.Context) ([]models.PurchasedPlan, error) {
		return h.wallet.MyPlans(ctx)
	})
	if h.sessionExpired(w, r, plans.Err) {
		return
	}
	data["Plans"] = plans
	h.render(w, "myplans.html", data)
}
