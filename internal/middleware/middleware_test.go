package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/findosh/wiprox/internal/logging"
	"github.com/findosh/wiprox/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSessions struct {
	ready   bool
	session models.Session
}

func (f *fakeSessions) Ready() bool             { return f.ready }
func (f *fakeSessions) Session() models.Session { return f.session }

func okHandler(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSession(r)
	w.Write([]byte("ok " + sess.Token))
}

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name         string
		sessions     *fakeSessions
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{"restoring", &fakeSessions{ready: false, session: models.Session{Token: "t1"}}, http.StatusOK, "", "Loading"},
		{"anonymous", &fakeSessions{ready: true}, http.StatusSeeOther, "/login", ""},
		{"authenticated", &fakeSessions{ready: true, session: models.Session{Token: "t1"}}, http.StatusOK, "", "ok t1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewGate(tt.sessions, logging.Nop()).RequireSession(http.HandlerFunc(okHandler))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mine", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Expected location %q, got %q", tt.wantLocation, loc)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

// brokenWriter fails every body write, like a client that hung up
type brokenWriter struct {
	header http.Header
	code   int
}

func (b *brokenWriter) Header() http.Header       { return b.header }
func (b *brokenWriter) WriteHeader(code int)      { b.code = code }
func (b *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestRequireSession_LoadingWriteErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	g := NewGate(&fakeSessions{ready: false}, zap.New(core).Sugar())
	w := &brokenWriter{header: http.Header{}}

	g.RequireSession(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mine", nil))

	if w.code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.code)
	}
	entries := logs.FilterMessage("failed to write loading page").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one logged write failure, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["error"]; got != "connection reset" {
		t.Errorf("Expected error field, got %v", got)
	}
}

func TestRecover(t *testing.T) {
	h := Recover(logging.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/home", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Reload") || !strings.Contains(body, `href="/home"`) {
		t.Errorf("Expected reload and home actions, got %s", body)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), mw("a"), mw("b"), Logger(logging.Nop()), SecurityHeaders)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b" {
		t.Errorf("Expected a,b, got %v", order)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("Expected security headers")
	}
}
