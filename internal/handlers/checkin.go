package handlers

import (
	"fmt"
	"net/http"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/screen"
)

// CheckInPage renders the daily check-in screen
func (h *Handler) CheckInPage(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Daily Check-in", "home")
	if err := h.checkInData(data); err != nil {
		h.log.Errorw("failed to load check-ins", "error", err)
		data["Error"] = "Failed to load check-in status"
	}
	h.render(w, "checkin.html", data)
}

// CheckIn records today's check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	c, err := h.wallet.CheckIn()
	if err != nil {
		data := h.page(r, "Daily Check-in", "home")
		if lerr := h.checkInData(data); lerr != nil {
			h.log.Errorw("failed to load check-ins", "error", lerr)
		}
		data["Error"] = screen.Message(err, "Check-in failed. Please try again.")
		h.renderStatus(w, http.StatusBadRequest, "checkin.html", data)
		return
	}
	h.notice(w, r, fmt.Sprintf("Day %d check-in complete. Reward ₹%d is pending.", c.Day, c.Reward), "/checkin")
}

func (h *Handler) checkInData(data map[string]interface{}) error {
	data["Schedule"] = models.CheckInSchedule
	status, err := h.wallet.CheckInStatus()
	if err != nil {
		return err
	}
	data["Status"] = status
	return nil
}
