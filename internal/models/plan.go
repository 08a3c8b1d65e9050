package models

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PlanTab groups catalog plans by duration
type PlanTab string

const (
	PlanTabDaily   PlanTab = "daily"   // more than 15 days
	PlanTabSpecial PlanTab = "special" // 15 days or fewer
)

// specialPlanMaxDays is the longest duration still listed under the special tab
const specialPlanMaxDays = 15

// ParsePlanTab maps a query value to a tab, defaulting to daily
func ParsePlanTab(s string) PlanTab {
	if PlanTab(strings.ToLower(strings.TrimSpace(s))) == PlanTabSpecial {
		return PlanTabSpecial
	}
	return PlanTabDaily
}

// Plan is a fixed-term, fixed-return investment product
type Plan struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	DailyIncome decimal.Decimal `json:"dailyIncome" yaml:"daily_income"`
	TotalIncome decimal.Decimal `json:"totalIncome" yaml:"total_income"`
	Duration    string          `json:"duration" yaml:"duration"` // e.g. "16 Days"
	Image       string          `json:"image,omitempty" yaml:"image,omitempty"`
	Listed      bool            `json:"-" yaml:"listed"` // shown on the products screen
}

// Days parses the leading integer of Duration, defaulting to 1
func (p Plan) Days() int {
	fields := strings.Fields(p.Duration)
	if len(fields) == 0 {
		return 1
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// NetProfit returns the total income minus the purchase price
func (p Plan) NetProfit() decimal.Decimal {
	return p.TotalIncome.Sub(p.Price)
}

// Tab returns the products tab the plan belongs to
func (p Plan) Tab() PlanTab {
	if p.Days() > specialPlanMaxDays {
		return PlanTabDaily
	}
	return PlanTabSpecial
}

// Validate checks that a catalog entry can be offered
func (p Plan) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("plan id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan %s: name is required", p.ID)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("plan %s: price must be positive", p.ID)
	}
	if p.DailyIncome.IsNegative() || p.TotalIncome.IsNegative() {
		return fmt.Errorf("plan %s: income cannot be negative", p.ID)
	}
	return nil
}

// Well-known plan IDs outside the listed products
const (
	PlanLimitedOffer = "limited-offer"
	PlanDefault      = "premium"
)

// Catalog is the client-defined list of plans
type Catalog struct {
	plans []Plan
	byID  map[string]Plan
}

// NewCatalog indexes the given plans; IDs must be unique
func NewCatalog(plans []Plan) (*Catalog, error) {
	c := &Catalog{
		plans: make([]Plan, 0, len(plans)),
		byID:  make(map[string]Plan, len(plans)),
	}
	for _, p := range plans {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %q", p.ID)
		}
		c.plans = append(c.plans, p)
		c.byID[p.ID] = p
	}
	return c, nil
}

// DefaultCatalog returns the built-in plans
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPlans())
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads plans from a YAML file with a top-level "plans" list
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Plans []Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, fmt.Errorf("catalog %s has no plans", path)
	}
	return NewCatalog(doc.Plans)
}

// Get finds a plan by ID
func (c *Catalog) Get(id string) (Plan, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Default returns the plan the invest screen falls back to
func (c *Catalog) Default() Plan {
	if p, ok := c.byID[PlanDefault]; ok {
		return p
	}
	if len(c.plans) > 0 {
		return c.plans[0]
	}
	return Plan{}
}

// Listed returns the products-screen plans of one tab, in catalog order
func (c *Catalog) Listed(tab PlanTab) []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		if p.Listed && p.Tab() == tab {
			out = append(out, p)
		}
	}
	return out
}

// DefaultPlans returns the built-in catalog entries
func DefaultPlans() []Plan {
	d := decimal.NewFromInt
	return []Plan{
		{ID: "daily-a", Name: "Wiprox Daily A", Price: d(500), DailyIncome: d(150), TotalIncome: d(2400), Duration: "16 Days", Image: "/invest.png", Listed: true},
		{ID: "daily-b", Name: "Wiprox Daily B", Price: d(1000), DailyIncome: d(250), TotalIncome: d(5000), Duration: "20 Days", Image: "/wiprox-daily-b.png", Listed: true},
		{ID: "daily-c", Name: "Wiprox Daily C", Price: d(2000), DailyIncome: d(800), TotalIncome: d(20000), Duration: "25 Days", Image: "/wiprox-daily-c.png", Listed: true},
		{ID: "daily-d", Name: "Wiprox Daily D", Price: d(3000), DailyIncome: d(1200), TotalIncome: d(36000), Duration: "30 Days", Image: "/wiprox-daily-d.png", Listed: true},
		{ID: "special-a", Name: "Wiprox Special A", Price: d(950), DailyIncome: d(750), TotalIncome: d(1500), Duration: "2 Days", Image: "/wiprox-special-a.png", Listed: true},
		{ID: "special-b", Name: "Wiprox Special B", Price: d(2500), DailyIncome: d(2000), TotalIncome: d(6000), Duration: "3 Days", Image: "/wiprox-special-b.png", Listed: true},
		{ID: PlanLimitedOffer, Name: "Limited Offer", Price: d(5000), DailyIncome: d(4000), TotalIncome: d(8000), Duration: "2 Days"},
		{ID: PlanDefault, Name: "Premium Investment Plan", Price: d(5000), DailyIncome: d(2999), TotalIncome: d(10000), Duration: "2 Days"},
	}
}

// PurchasedPlan is a server-side record of a plan the user has invested in
type PurchasedPlan struct {
	ID          FlexID          `json:"id"`
	Product     string          `json:"product"`
	Amount      decimal.Decimal `json:"amount"`
	DailyIncome decimal.Decimal `json:"daily_income"`
	TotalIncome decimal.Decimal `json:"total_income"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
}

// IsActive reports whether the plan is still accruing at the given time
func (p PurchasedPlan) IsActive(now time.Time) bool {
	return !now.Before(p.StartDate) && now.Before(p.EndDate)
}
