// Package mockapi is an in-memory stand-in for the platform backend. It
// serves the same REST surface so the web client can be run and tested
// without the real service.
package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/findosh/wiprox/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds mock backend settings
type Config struct {
	Prefix    string // path prefix the API is mounted under, "/api" by default
	JWTSecret string
	TokenTTL  time.Duration
	UPIID     string
	Rules     models.WithdrawalRules
	Now       func() time.Time
}

type account struct {
	ID                 string
	FullName           string
	Phone              string
	PasswordHash       []byte
	WithdrawalPassHash []byte
	ReferralCode       string
	ReferredBy         string
	Balance            decimal.Decimal
	WithdrawalBalance  decimal.Decimal
	TotalInvested      decimal.Decimal
	TotalWithdrawal    decimal.Decimal
	TotalEarnings      decimal.Decimal
	Bank               *models.BankAccount
	Plans              []models.PurchasedPlan
	Records            map[models.RecordKind][]models.Record
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (a *account) profile() models.UserProfile {
	created, updated := a.CreatedAt, a.UpdatedAt
	return models.UserProfile{
		ID:                models.FlexID(a.ID),
		FullName:          a.FullName,
		Phone:             a.Phone,
		Balance:           a.Balance,
		TotalInvested:     a.TotalInvested,
		TotalWithdrawal:   a.TotalWithdrawal,
		TotalEarnings:     a.TotalEarnings,
		ReferralCode:      a.ReferralCode,
		WithdrawalBalance: a.WithdrawalBalance,
		CreatedAt:         &created,
		UpdatedAt:         &updated,
	}
}

func (a *account) summary() models.UserSummary {
	return models.UserSummary{ID: models.FlexID(a.ID), FullName: a.FullName, Phone: a.Phone}
}

// Server is the mock backend
type Server struct {
	cfg    Config
	log    *zap.SugaredLogger
	router *mux.Router

	mu         sync.Mutex
	accounts   map[string]*account // by ID
	byPhone    map[string]string
	byReferral map[string]string
	payments   map[string]*payment
	calls      map[string]int
}

// New creates a mock backend with no users
func New(cfg Config, log *zap.SugaredLogger) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = "/api"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "mockapi-dev-secret"
	}
	if cfg.UPIID == "" {
		cfg.UPIID = "wiprox-pay@upi"
	}
	if cfg.Rules.Minimum.IsZero() {
		cfg.Rules = models.DefaultWithdrawalRules()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		accounts:   make(map[string]*account),
		byPhone:    make(map[string]string),
		byReferral: make(map[string]string),
		payments:   make(map[string]*payment),
		calls:      make(map[string]int),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.count)
	api := r.PathPrefix(s.cfg.Prefix).Subrouter()

	api.HandleFunc("/users/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/users/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/users/register/{code}", s.register).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/users/me", s.me).Methods(http.MethodGet)
	authed.HandleFunc("/users/myPlans", s.myPlans).Methods(http.MethodGet)
	authed.HandleFunc("/users/income-Records", s.records(models.RecordIncome)).Methods(http.MethodGet)
	authed.HandleFunc("/users/withdraw-Records", s.records(models.RecordWithdrawal)).Methods(http.MethodGet)
	authed.HandleFunc("/users/recharge-records", s.records(models.RecordRecharge)).Methods(http.MethodGet)
	authed.HandleFunc("/users/recharge-wallet", s.rechargeWallet).Methods(http.MethodPost)
	authed.HandleFunc("/users/invest-money", s.investMoney).Methods(http.MethodPost)
	authed.HandleFunc("/users/bank-details", s.bankDetails).Methods(http.MethodGet)
	authed.HandleFunc("/users/add-bank", s.addBank).Methods(http.MethodPost)
	authed.HandleFunc("/users/withdraw", s.withdraw).Methods(http.MethodPost)
	authed.HandleFunc("/payments/initiate", s.initiatePayment).Methods(http.MethodPost)
	authed.HandleFunc("/payments/verify", s.verifyPayment).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	return r
}

// Handler returns the HTTP handler serving the mock API
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, s.cfg.Prefix)
		s.mu.Lock()
		s.calls[key]++
		s.mu.Unlock()
		if s.log != nil {
			s.log.Debugw("mockapi request", "method", r.Method, "path", r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Calls returns how many requests hit method and path (path without prefix)
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}
