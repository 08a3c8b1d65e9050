// Package router maps URL paths to screens
package router

import (
	"net/http"

	"github.com/findosh/wiprox/internal/handlers"
	"github.com/findosh/wiprox/internal/middleware"
	"github.com/findosh/wiprox/internal/models"
	"github.com/gorilla/mux"
)

// Route is one screen: a page handler and, for forms, its submit handler
type Route struct {
	Path      string
	Protected bool
	Page      http.HandlerFunc
	Submit    http.HandlerFunc
}

// Routes returns the route table
func Routes(h *handlers.Handler) []Route {
	return []Route{
		// Public
		{Path: "/login", Page: h.LoginPage, Submit: h.Login},
		{Path: "/register", Page: h.RegisterPage, Submit: h.Register},
		{Path: "/register/{code}", Page: h.RegisterPage, Submit: h.Register},

		// Protected
		{Path: "/home", Protected: true, Page: h.Home},
		{Path: "/products", Protected: true, Page: h.Products},
		{Path: "/promotion", Protected: true, Page: h.Promotion},
		{Path: "/mine", Protected: true, Page: h.Mine},
		{Path: "/recharge", Protected: true, Page: h.RechargePage, Submit: h.Recharge},
		{Path: "/withdraw", Protected: true, Page: h.WithdrawPage, Submit: h.Withdraw},
		{Path: "/contact", Protected: true, Page: h.Contact},
		{Path: "/checkin", Protected: true, Page: h.CheckInPage, Submit: h.CheckIn},
		{Path: "/bank-details", Protected: true, Page: h.BankDetailsPage, Submit: h.AddBank},
		{Path: "/invest", Protected: true, Page: h.InvestPage, Submit: h.Invest},
		{Path: "/income-record", Protected: true, Page: h.Records(models.RecordIncome)},
		{Path: "/withdrawal-record", Protected: true, Page: h.Records(models.RecordWithdrawal)},
		{Path: "/recharge-record", Protected: true, Page: h.Records(models.RecordRecharge)},
		{Path: "/my-plans", Protected: true, Page: h.MyPlans},
		{Path: "/payment", Protected: true, Page: h.PaymentPage, Submit: h.Payment},
	}
}

// New builds the router. Protected routes go through the session gate;
// everything else is public.
func New(h *handlers.Handler, gate *middleware.Gate) *mux.Router {
	r := mux.NewRouter()

	for _, route := range Routes(h) {
		wrap := func(fn http.HandlerFunc) http.Handler { return gate.OptionalSession(fn) }
		if route.Protected {
			wrap = func(fn http.HandlerFunc) http.Handler { return gate.RequireSession(fn) }
		}
		r.Handle(route.Path, wrap(route.Page)).Methods(http.MethodGet, http.MethodHead)
		if route.Submit != nil {
			r.Handle(route.Path, wrap(route.Submit)).Methods(http.MethodPost)
		}
	}

	r.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	r.HandleFunc("/", h.Root).Methods(http.MethodGet, http.MethodHead)
	r.NotFoundHandler = gate.OptionalSession(http.HandlerFunc(h.NotFound))

	return r
}
