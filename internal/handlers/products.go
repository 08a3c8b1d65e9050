package handlers

import (
	"net/http"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/screen"
)

// Products renders the plan catalog for the selected tab
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	tab := models.ParsePlanTab(r.URL.Query().Get("tab"))
	data := h.page(r, "Products", "products")
	if !h.profileData(w, r, data) {
		return
	}
	data["Tab"] = string(tab)
	data["Plans"] = h.wallet.Catalog().Listed(tab)
	h.render(w, "products.html", data)
}

// InvestPage shows the confirmation for one plan. Unknown or missing plan
// ids fall back to the default plan.
func (h *Handler) InvestPage(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Invest", "products")
	data["Plan"] = h.planFor(r.URL.Query().Get("plan"))
	h.render(w, "invest.html", data)
}

// Invest purchases the chosen plan
func (h *Handler) Invest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/invest", "Invalid request")
		return
	}

	planID := formValue(r, "plan")
	plan, err := h.wallet.Invest(r.Context(), planID)
	if err != nil {
		if h.sessionExpired(w, r, err) {
			return
		}
		data := h.page(r, "Invest", "products")
		data["Plan"] = h.planFor(planID)
		data["Error"] = screen.Message(err, "Investment failed. Please try again.")
		h.renderStatus(w, http.StatusBadRequest, "invest.html", data)
		return
	}

	h.notice(w, r, "Successfully invested in "+plan.Name, "/my-plans")
}

func (h *Handler) planFor(id string) models.Plan {
	if plan, ok := h.wallet.Catalog().Get(id); ok {
		return plan
	}
	return h.wallet.Catalog().Default()
}
