package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// openHours is inside the withdrawal window
var openHours = time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T, now time.Time) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Config{Now: func() time.Time { return now }}, nil)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, srv.URL+"/api"+path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestServer_RegisterAndLogin(t *testing.T) {
	_, srv := newTestServer(t, openHours)

	status, out := call(t, srv, http.MethodPost, "/users/register", "", map[string]string{
		"full_name":           "Asha",
		"phone":               "8888888888",
		"password":            "secret1",
		"withdrawal_password": "1234",
	})
	if status != http.StatusCreated {
		t.Fatalf("Expected 201, got %d (%v)", status, out)
	}
	if out["token"] == "" || out["token"] == nil {
		t.Error("Expected a token")
	}

	status, _ = call(t, srv, http.MethodPost, "/users/register", "", map[string]string{
		"full_name": "Asha", "phone": "8888888888", "password": "secret1", "withdrawal_password": "1234",
	})
	if status != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate phone, got %d", status)
	}

	status, out = call(t, srv, http.MethodPost, "/users/login", "", map[string]string{"phone": "8888888888", "password": "wrong"})
	if status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", status)
	}
	if out["message"] != "Invalid phone number or password" {
		t.Errorf("Unexpected message %v", out["message"])
	}

	status, out = call(t, srv, http.MethodPost, "/users/login", "", map[string]string{"phone": "8888888888", "password": "secret1"})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	token := out["token"].(string)

	status, out = call(t, srv, http.MethodGet, "/users/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("Expected 200 from me, got %d", status)
	}
	if out["phone"] != "8888888888" {
		t.Errorf("Expected phone in profile, got %v", out)
	}
}

func TestServer_RequiresToken(t *testing.T) {
	s, srv := newTestServer(t, openHours)
	id, _ := s.Seed(SeedUser{FullName: "A", Phone: "1", Password: "p"})

	if status, _ := call(t, srv, http.MethodGet, "/users/me", "", nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", status)
	}
	if status, _ := call(t, srv, http.MethodGet, "/users/me", "garbage", nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for garbage token, got %d", status)
	}
	expired, _ := s.ExpiredToken(id)
	if status, _ := call(t, srv, http.MethodGet, "/users/me", expired, nil); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for expired token, got %d", status)
	}
}

func TestServer_ReferralCommission(t *testing.T) {
	s, srv := newTestServer(t, openHours)
	inviterID, _ := s.Seed(SeedUser{FullName: "Inviter", Phone: "1", Password: "p"})
	inviterToken, _ := s.IssueToken(inviterID)
	_, me := call(t, srv, http.MethodGet, "/users/me", inviterToken, nil)
	code := me["referral_code"].(string)

	status, _ := call(t, srv, http.MethodPost, "/users/register/BOGUS", "", map[string]string{
		"full_name": "B", "phone": "2", "password": "secret1", "withdrawal_password": "1",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown referral code, got %d", status)
	}

	inviteeID, err := s.Seed(SeedUser{FullName: "Invitee", Phone: "3", Password: "p", Balance: decimal.NewFromInt(1000), ReferredBy: code})
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	inviteeToken, _ := s.IssueToken(inviteeID)

	status, out := call(t, srv, http.MethodPost, "/users/invest-money", inviteeToken, map[string]string{
		"amount": "1000", "product": "Wiprox Daily A", "dailyIncome": "300", "totalIncome": "6000", "days": "20",
	})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%v)", status, out)
	}

	_, me = call(t, srv, http.MethodGet, "/users/me", inviterToken, nil)
	got, _ := decimal.NewFromString(me["totalEarnings"].(string))
	if !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected 15%% commission of 150, got %s", got)
	}

	status, _ = call(t, srv, http.MethodPost, "/users/invest-money", inviteeToken, map[string]string{
		"amount": "1000", "product": "Wiprox Daily A", "dailyIncome": "300", "totalIncome": "6000", "days": "20",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Expected insufficient balance rejection, got %d", status)
	}
}

func TestServer_WithdrawRules(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		bank    bool
		amount  string
		balance int64
		want    int
	}{
		{"no bank", openHours, false, "200", 500, http.StatusBadRequest},
		{"before window", time.Date(2026, 3, 2, 6, 30, 0, 0, time.Local), true, "200", 500, http.StatusBadRequest},
		{"after window", time.Date(2026, 3, 2, 18, 30, 0, 0, time.Local), true, "200", 500, http.StatusBadRequest},
		{"below minimum", openHours, true, "150", 500, http.StatusBadRequest},
		{"above maximum", openHours, true, "100001", 200000, http.StatusBadRequest},
		{"insufficient", openHours, true, "600", 500, http.StatusBadRequest},
		{"ok", openHours, true, "200", 500, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, srv := newTestServer(t, tt.now)
			id, _ := s.Seed(SeedUser{FullName: "A", Phone: "1", Password: "p", WithdrawalBalance: decimal.NewFromInt(tt.balance)})
			token, _ := s.IssueToken(id)
			if tt.bank {
				call(t, srv, http.MethodPost, "/users/add-bank", token, map[string]string{
					"account_name": "A", "account_no": "1234567890", "bank_name": "SBI", "ifsc_code": "sbin0001",
				})
			}
			status, out := call(t, srv, http.MethodPost, "/users/withdraw", token, map[string]string{"amount": tt.amount})
			if status != tt.want {
				t.Errorf("Expected %d, got %d (%v)", tt.want, status, out)
			}
		})
	}
}

func TestServer_PaymentFlow(t *testing.T) {
	s, srv := newTestServer(t, openHours)
	id, _ := s.Seed(SeedUser{FullName: "A", Phone: "1", Password: "p"})
	token, _ := s.IssueToken(id)

	status, _ := call(t, srv, http.MethodPost, "/payments/initiate", token, map[string]string{"amount": "550", "paymentMethod": "gpay"})
	if status != http.StatusBadRequest {
		t.Errorf("Expected unsupported method rejection, got %d", status)
	}

	status, out := call(t, srv, http.MethodPost, "/payments/initiate", token, map[string]string{"amount": "550", "paymentMethod": "paytm"})
	if status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if out["data"] == nil {
		t.Error("Expected payment wrapped in data")
	}

	status, _ = call(t, srv, http.MethodPost, "/payments/verify", token, map[string]string{"amount": "550", "paymentMethod": "paytm", "utrNumber": " "})
	if status != http.StatusBadRequest {
		t.Errorf("Expected blank UTR rejection, got %d", status)
	}
	status, _ = call(t, srv, http.MethodPost, "/payments/verify", token, map[string]string{"amount": "550", "paymentMethod": "paytm", "utrNumber": "123456789012"})
	if status != http.StatusOK {
		t.Errorf("Expected 200, got %d", status)
	}

	if n := s.Calls(http.MethodPost, "/payments/verify"); n != 2 {
		t.Errorf("Expected 2 verify calls, got %d", n)
	}
}
