// Package wallet implements the money-moving flows: withdrawals, plan
// purchases, recharges, bank binding and the daily check-in.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/findosh/wiprox/internal/api"
	"github.com/findosh/wiprox/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrBelowMinimum          = errors.New("minimum withdrawal amount")
	ErrInsufficientBalance   = errors.New("insufficient withdrawal balance")
	ErrPlanNotFound          = errors.New("plan not found")
	ErrPaymentMethodRequired = errors.New("choose a payment method")
	ErrUTRRequired           = errors.New("enter the UTR number of your payment")
)

// Backend is the part of the REST API the flows call
type Backend interface {
	Me(ctx context.Context) (*models.UserProfile, error)
	MyPlans(ctx context.Context) ([]models.PurchasedPlan, error)
	Records(ctx context.Context, kind models.RecordKind) ([]models.Record, error)
	RechargeWallet(ctx context.Context, amount decimal.Decimal) (*api.Result, error)
	InvestMoney(ctx context.Context, in api.InvestRequest) (*api.Result, error)
	BankDetails(ctx context.Context) (*models.BankDetails, error)
	AddBank(ctx context.Context, account models.BankAccount) (*api.Result, error)
	Withdraw(ctx context.Context, amount decimal.Decimal) (*api.Result, error)
	InitiatePayment(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod) (*api.Payment, error)
	VerifyPayment(ctx context.Context, amount decimal.Decimal, utr string, method models.PaymentMethod) (*api.Payment, error)
}

// Invalidator is told when a mutation changed balances
type Invalidator interface {
	Invalidate() error
}

// CheckInLog stores local check-ins
type CheckInLog interface {
	Create(c *models.CheckIn) error
	GetByDate(date string) (*models.CheckIn, error)
	LatestBefore(date string) (*models.CheckIn, error)
	Recent(limit int) ([]models.CheckIn, error)
}

// Service runs the flows against the backend
type Service struct {
	backend  Backend
	cache    Invalidator
	checkins CheckInLog
	catalog  *models.Catalog
	rules    models.WithdrawalRules
	log      *zap.SugaredLogger
	now      func() time.Time

	inflight singleflight.Group

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Config holds service configuration
type Config struct {
	Catalog *models.Catalog
	Rules   models.WithdrawalRules
	Now     func() time.Time
	Rand    *rand.Rand
}

// NewService creates a new wallet service
func NewService(cfg Config, backend Backend, cache Invalidator, checkins CheckInLog, log *zap.SugaredLogger) *Service {
	if cfg.Catalog == nil {
		cfg.Catalog = models.DefaultCatalog()
	}
	if cfg.Rules.Minimum.IsZero() {
		cfg.Rules = models.DefaultWithdrawalRules()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		backend:  backend,
		cache:    cache,
		checkins: checkins,
		catalog:  cfg.Catalog,
		rules:    cfg.Rules,
		log:      log,
		now:      cfg.Now,
		rng:      cfg.Rand,
	}
}

// Catalog returns the plan catalog offered for purchase
func (s *Service) Catalog() *models.Catalog {
	return s.catalog
}

// Rules returns the withdrawal policy
func (s *Service) Rules() models.WithdrawalRules {
	return s.rules
}

// once coalesces identical submissions that overlap in time into one call.
// The shared call outlives the cancellation of whichever request started it,
// since other callers may be waiting on its result.
func (s *Service) once(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	detached := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		return fn(detached)
	})
	if shared {
		s.log.Debugw("coalesced duplicate submission", "key", key)
	}
	return v, err
}

func (s *Service) invalidate() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(); err != nil {
		s.log.Warnw("failed to invalidate profile cache", "error", err)
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := models.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, models.Invalid(err)
	}
	return amount, nil
}

// Withdraw requests a payout. The amount must meet the minimum and be covered
// by the withdrawal balance read fresh from the backend; the snapshot cache is
// never consulted.
func (s *Service) Withdraw(ctx context.Context, rawAmount string) (*api.Result, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	if amount.LessThan(s.rules.Minimum) {
		return nil, models.Invalid(fmt.Errorf("%w is %s", ErrBelowMinimum, models.FormatRupees(s.rules.Minimum)))
	}

	v, err := s.once(ctx, "withdraw:"+amount.String(), func(ctx context.Context) (interface{}, error) {
		profile, err := s.backend.Me(ctx)
		if err != nil {
			return nil, err
		}
		if profile.WithdrawalBalance.LessThan(amount) {
			return nil, models.Invalid(ErrInsufficientBalance)
		}
		res, err := s.backend.Withdraw(ctx, amount)
		if err != nil {
			return nil, err
		}
		s.invalidate()
		s.log.Infow("withdrawal requested", "amount", amount.String())
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.Result), nil
}

// Invest buys the catalog plan with the given ID. An empty ID selects the
// default plan.
func (s *Service) Invest(ctx context.Context, planID string) (*models.Plan, error) {
	plan := s.catalog.Default()
	if planID != "" {
		p, ok := s.catalog.Get(planID)
		if !ok {
			return nil, models.Invalid(ErrPlanNotFound)
		}
		plan = p
	}

	_, err := s.once(ctx, "invest:"+plan.ID, func(ctx context.Context) (interface{}, error) {
		res, err := s.backend.InvestMoney(ctx, api.InvestRequest{
			Amount:      plan.Price,
			Product:     plan.Name,
			DailyIncome: plan.DailyIncome,
			TotalIncome: plan.TotalIncome,
			Days:        plan.Days(),
		})
		if err != nil {
			return nil, err
		}
		s.invalidate()
		s.log.Infow("plan purchased", "plan", plan.ID, "amount", plan.Price.String())
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// PrepareRecharge validates a recharge amount before the payment step
func (s *Service) PrepareRecharge(rawAmount string) (decimal.Decimal, error) {
	return parseAmount(rawAmount)
}

// RechargeWallet credits the wallet directly, without the payment gateway
func (s *Service) RechargeWallet(ctx context.Context, rawAmount string) (*api.Result, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	v, err := s.once(ctx, "recharge:"+amount.String(), func(ctx context.Context) (interface{}, error) {
		res, err := s.backend.RechargeWallet(ctx, amount)
		if err != nil {
			return nil, err
		}
		s.invalidate()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.Result), nil
}

// InitiatePayment opens a gateway payment for the amount
func (s *Service) InitiatePayment(ctx context.Context, rawAmount, rawMethod string) (*api.Payment, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	method, ok := models.ParsePaymentMethod(rawMethod)
	if !ok {
		return nil, models.Invalid(ErrPaymentMethodRequired)
	}
	return s.backend.InitiatePayment(ctx, amount, method)
}

// VerifyPayment submits the UTR of a transfer for review
func (s *Service) VerifyPayment(ctx context.Context, rawAmount, utr, rawMethod string) (*api.Payment, error) {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	method, ok := models.ParsePaymentMethod(rawMethod)
	if !ok {
		return nil, models.Invalid(ErrPaymentMethodRequired)
	}
	utr = strings.TrimSpace(utr)
	if utr == "" {
		return nil, models.Invalid(ErrUTRRequired)
	}

	v, err := s.once(ctx, "verify:"+utr, func(ctx context.Context) (interface{}, error) {
		p, err := s.backend.VerifyPayment(ctx, amount, utr, method)
		if err != nil {
			return nil, err
		}
		s.invalidate()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.Payment), nil
}

// BankDetails returns the bound bank account, if any
func (s *Service) BankDetails(ctx context.Context) (*models.BankDetails, error) {
	return s.backend.BankDetails(ctx)
}

// AddBank validates the form and binds the account. Mismatched account
// numbers never reach the backend.
func (s *Service) AddBank(ctx context.Context, in models.BankAccountInput) (*api.Result, error) {
	if err := in.Validate(); err != nil {
		return nil, models.Invalid(err)
	}
	account := in.Account()

	v, err := s.once(ctx, "bank:"+account.AccountNumber, func(ctx context.Context) (interface{}, error) {
		return s.backend.AddBank(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return v.(*api.Result), nil
}

// Records lists one ledger as the backend returns it
func (s *Service) Records(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	return s.backend.Records(ctx, kind)
}

// MyPlans lists purchased plans
func (s *Service) MyPlans(ctx context.Context) ([]models.PurchasedPlan, error) {
	return s.backend.MyPlans(ctx)
}
