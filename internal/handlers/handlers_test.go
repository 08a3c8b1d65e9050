package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/findosh/wiprox/internal/config"
	"github.com/findosh/wiprox/internal/logging"
	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	d := decimal.RequireFromString("1255.5")
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"decimal", decimal.NewFromInt(500), "₹500"},
		{"fraction", d, "₹1255.50"},
		{"pointer", &d, "₹1255.50"},
		{"nil pointer", (*decimal.Decimal)(nil), "₹0"},
		{"int64", int64(285), "₹285"},
		{"int", 7499, "₹7499"},
		{"string", "550", "₹550"},
		{"unknown", 1.5, "₹0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMoney(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTemplatesParse(t *testing.T) {
	h, err := New(&config.Config{}, logging.Nop(), nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected templates to parse, got %v", err)
	}
	for _, name := range []string{"login.html", "register.html", "home.html", "mine.html", "products.html",
		"invest.html", "recharge.html", "payment.html", "withdraw.html", "bank.html", "records.html",
		"myplans.html", "promotion.html", "contact.html", "checkin.html", "notice.html", "notfound.html"} {
		if h.templates.Lookup(name) == nil {
			t.Errorf("Expected template %s", name)
		}
	}
}

func TestNotice_RefreshHeader(t *testing.T) {
	h, err := New(&config.Config{RedirectDelay: 2 * time.Second}, logging.Nop(), nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rec := httptest.NewRecorder()
	h.notice(rec, httptest.NewRequest(http.MethodPost, "/withdraw", nil), "Withdrawal requested successfully", "/withdrawal-record")

	if got := rec.Header().Get("Refresh"); got != "2; url=/withdrawal-record" {
		t.Errorf("Expected refresh header, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Withdrawal requested successfully") {
		t.Error("Expected message in body")
	}
}

func TestNotFound(t *testing.T) {
	h, err := New(&config.Config{}, logging.Nop(), nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `href="/home"`) {
		t.Error("Expected link home")
	}
}
