package handlers

import (
	"net/http"

	"github.com/findosh/wiprox/internal/api"
	"github.com/findosh/wiprox/internal/screen"
	"github.com/gorilla/mux"
)

// LoginPage renders the login page
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to home
	if h.auth.Store().IsAuthenticated() {
		h.redirect(w, r, "/home")
		return
	}

	h.render(w, "login.html", h.page(r, "Login", ""))
}

// Login handles login form submission
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/login", "Invalid request")
		return
	}

	phone := formValue(r, "phone")
	if _, err := h.auth.Login(r.Context(), phone, r.FormValue("password")); err != nil {
		data := h.page(r, "Login", "")
		data["Error"] = screen.Message(err, "Invalid login credentials")
		data["Phone"] = phone
		status := http.StatusUnauthorized
		if api.IsNetwork(err) {
			status = http.StatusBadGateway
		}
		h.renderStatus(w, status, "login.html", data)
		return
	}

	h.redirect(w, r, "/home")
}

// RegisterPage renders the registration page, with the referral code taken
// from the path when present
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.auth.Store().IsAuthenticated() {
		h.redirect(w, r, "/home")
		return
	}

	data := h.page(r, "Register", "")
	data["ReferralCode"] = mux.Vars(r)["code"]
	h.render(w, "register.html", data)
}

// Register handles registration form submission
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "/register", "Invalid request")
		return
	}

	code := mux.Vars(r)["code"]
	if code == "" {
		code = formValue(r, "referral_code")
	}
	in := api.RegisterInput{
		FullName:           formValue(r, "full_name"),
		Phone:              formValue(r, "phone"),
		Password:           r.FormValue("password"),
		WithdrawalPassword: r.FormValue("withdrawal_password"),
	}

	if _, err := h.auth.Register(r.Context(), in, code); err != nil {
		data := h.page(r, "Register", "")
		data["Error"] = screen.Message(err, "Registration failed")
		data["FullName"] = in.FullName
		data["Phone"] = in.Phone
		data["ReferralCode"] = code
		h.renderStatus(w, http.StatusBadRequest, "register.html", data)
		return
	}

	h.redirect(w, r, "/home")
}

// Logout handles user logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(); err != nil {
		h.log.Errorw("logout failed", "error", err)
	}
	h.redirect(w, r, "/login")
}
