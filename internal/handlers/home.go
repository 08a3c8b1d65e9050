package handlers

import (
	"context"
	"net/http"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/screen"
	"github.com/findosh/wiprox/internal/services/cache"
	"github.com/findosh/wiprox/internal/storage"
)

// ReferralLevel is one row of the promotion commission table
type ReferralLevel struct {
	Level      int
	Commission string
}

var referralLevels = []ReferralLevel{
	{Level: 1, Commission: "15%"},
	{Level: 2, Commission: "0%"},
	{Level: 3, Commission: "0%"},
}

// loadProfile fetches the profile fresh and returns the cached snapshot
// alongside it so a failed fetch can still show the last known numbers.
func (h *Handler) loadProfile(r *http.Request) (screen.State[*models.UserProfile], *cache.Snapshot) {
	snap, _ := h.profiles.Get()
	state := screen.Run(r.Context(), "Failed to load profile", func(ctx context.Context) (*models.UserProfile, error) {
		return h.profiles.Refresh(ctx, h.backend)
	})
	if state.OK() {
		h.auth.UpdateIdentity(state.Data)
	}
	return state, snap
}

// profileData puts the profile state into the page data. It reports false
// when the session expired and the response has been written.
func (h *Handler) profileData(w http.ResponseWriter, r *http.Request, data map[string]interface{}) bool {
	state, snap := h.loadProfile(r)
	if h.sessionExpired(w, r, state.Err) {
		return false
	}
	data["Profile"] = state
	switch {
	case state.OK():
		data["Current"] = state.Data
	case snap != nil:
		data["Current"] = snap.Profile
		data["Cached"] = snap
	}
	return true
}

// Home renders the home screen
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Home", "home")
	if !h.profileData(w, r, data) {
		return
	}

	first, err := h.flags.SetOnce(storage.FlagWelcomeShown)
	if err != nil {
		h.log.Warnw("failed to record welcome flag", "error", err)
	}
	data["Welcome"] = first
	if offer, ok := h.wallet.Catalog().Get(models.PlanLimitedOffer); ok {
		data["Offer"] = offer
	}
	h.render(w, "home.html", data)
}

// Mine renders the profile screen
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Mine", "mine")
	if !h.profileData(w, r, data) {
		return
	}
	h.render(w, "mine.html", data)
}

// Promotion renders the invite screen
func (h *Handler) Promotion(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Promotion", "promotion")
	if !h.profileData(w, r, data) {
		return
	}
	if p, ok := data["Current"].(*models.UserProfile); ok && p != nil && p.ReferralCode != "" {
		data["InviteLink"] = h.cfg.InviteLink(p.ReferralCode)
	}
	data["Levels"] = referralLevels
	h.render(w, "promotion.html", data)
}

// Contact renders the support channels
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, "contact.html", h.page(r, "Contact Us", "mine"))
}
