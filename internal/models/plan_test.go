package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPlan_Days(t *testing.T) {
	tests := []struct {
		duration string
		want     int
	}{
		{"16 Days", 16},
		{"2 Days", 2},
		{"", 1},
		{"forever", 1},
		{"0 Days", 1},
	}

	for _, tt := range tests {
		p := Plan{Duration: tt.duration}
		if got := p.Days(); got != tt.want {
			t.Errorf("Days(%q): expected %d, got %d", tt.duration, tt.want, got)
		}
	}
}

func TestPlan_Tab(t *testing.T) {
	if tab := (Plan{Duration: "16 Days"}).Tab(); tab != PlanTabDaily {
		t.Errorf("Expected daily tab, got %s", tab)
	}
	if tab := (Plan{Duration: "15 Days"}).Tab(); tab != PlanTabSpecial {
		t.Errorf("Expected special tab, got %s", tab)
	}
}

func TestPlan_NetProfit(t *testing.T) {
	p := Plan{Price: decimal.NewFromInt(500), TotalIncome: decimal.NewFromInt(2400)}
	if !p.NetProfit().Equal(decimal.NewFromInt(1900)) {
		t.Errorf("Expected 1900, got %s", p.NetProfit())
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	if c.Default().ID != PlanDefault {
		t.Errorf("Expected default plan %s, got %s", PlanDefault, c.Default().ID)
	}
	if _, ok := c.Get(PlanLimitedOffer); !ok {
		t.Error("Expected limited offer in catalog")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Expected missing plan not found")
	}

	daily := c.Listed(PlanTabDaily)
	special := c.Listed(PlanTabSpecial)
	if len(daily) != 4 || len(special) != 2 {
		t.Errorf("Expected 4 daily and 2 special plans, got %d and %d", len(daily), len(special))
	}
	for _, p := range special {
		if p.ID == PlanLimitedOffer || p.ID == PlanDefault {
			t.Errorf("Expected unlisted plan %s to be hidden", p.ID)
		}
	}
}

func TestNewCatalog_Rejects(t *testing.T) {
	d := decimal.NewFromInt
	tests := []struct {
		name  string
		plans []Plan
	}{
		{"duplicate", []Plan{{ID: "a", Name: "A", Price: d(1)}, {ID: "a", Name: "B", Price: d(2)}}},
		{"no id", []Plan{{Name: "A", Price: d(1)}}},
		{"free", []Plan{{ID: "a", Name: "A"}}},
		{"negative income", []Plan{{ID: "a", Name: "A", Price: d(1), DailyIncome: d(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.plans); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	doc := `plans:
  - id: starter
    name: Starter
    price: "300"
    daily_income: "90"
    total_income: "1800"
    duration: 20 Days
    listed: true
  - id: premium
    name: Premium
    price: 5000
    daily_income: 2999
    total_income: 10000
    duration: 2 Days
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	starter, ok := c.Get("starter")
	if !ok {
		t.Fatal("Expected starter plan")
	}
	if !starter.Price.Equal(decimal.NewFromInt(300)) || starter.Days() != 20 {
		t.Errorf("Unexpected plan %+v", starter)
	}
	if listed := c.Listed(PlanTabDaily); len(listed) != 1 {
		t.Errorf("Expected one listed daily plan, got %d", len(listed))
	}
	if c.Default().Name != "Premium" {
		t.Errorf("Expected premium default, got %s", c.Default().Name)
	}
}

func TestLoadCatalog_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	if err := os.WriteFile(path, []byte("plans: []\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Error("Expected error for empty catalog")
	}
}

func TestParsePlanTab(t *testing.T) {
	if ParsePlanTab(" Special ") != PlanTabSpecial {
		t.Error("Expected special")
	}
	if ParsePlanTab("weird") != PlanTabDaily {
		t.Error("Expected daily fallback")
	}
}
