// Package handlers provides HTTP request handlers
package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/findosh/wiprox/internal/config"
	"github.com/findosh/wiprox/internal/middleware"
	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/services/auth"
	"github.com/findosh/wiprox/internal/services/cache"
	"github.com/findosh/wiprox/internal/services/wallet"
	"github.com/findosh/wiprox/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler contains all HTTP handlers and dependencies
type Handler struct {
	cfg       *config.Config
	templates *template.Template
	log       *zap.SugaredLogger
	auth      *auth.Service
	backend   cache.Fetcher
	profiles  *cache.ProfileCache
	wallet    *wallet.Service
	flags     *storage.SessionFlags
}

// New creates a new handler with all dependencies
func New(
	cfg *config.Config,
	log *zap.SugaredLogger,
	authService *auth.Service,
	backend cache.Fetcher,
	profiles *cache.ProfileCache,
	walletService *wallet.Service,
	flags *storage.SessionFlags,
) (*Handler, error) {
	tmpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		cfg:       cfg,
		templates: tmpl,
		log:       log,
		auth:      authService,
		backend:   backend,
		profiles:  profiles,
		wallet:    walletService,
		flags:     flags,
	}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"rupees":   formatMoney,
		"date":     formatDate,
		"datetime": formatDateTime,
		"add":      func(a, b int) int { return a + b },
	}
}

func formatMoney(v interface{}) string {
	switch val := v.(type) {
	case decimal.Decimal:
		return models.FormatRupees(val)
	case *decimal.Decimal:
		if val == nil {
			return "₹0"
		}
		return models.FormatRupees(*val)
	case int:
		return models.FormatRupees(decimal.NewFromInt(int64(val)))
	case int64:
		return models.FormatRupees(decimal.NewFromInt(val))
	case string:
		return "₹" + val
	default:
		return "₹0"
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 03:04 PM")
}

// page builds the data every template gets
func (h *Handler) page(r *http.Request, title, nav string) map[string]interface{} {
	data := map[string]interface{}{
		"Title":   title + " - Wiprox",
		"Nav":     nav,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	if sess, ok := middleware.GetSession(r); ok {
		data["User"] = sess.User
	}
	return data
}

// render renders a template with the given data
func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	h.renderStatus(w, http.StatusOK, name, data)
}

func (h *Handler) renderStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Errorw("template error", "template", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect performs an HTTP redirect
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// redirectWithError redirects with an error notice in the query
func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	h.redirect(w, r, path+"?error="+url.QueryEscape(message))
}

// notice shows a success message and moves on to next after the configured
// delay, the way a toast is followed by navigation
func (h *Handler) notice(w http.ResponseWriter, r *http.Request, message, next string) {
	delay := int(h.cfg.RedirectDelay / time.Second)
	if delay < 1 {
		delay = 1
	}
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", delay, next))
	data := h.page(r, "Success", "")
	data["Message"] = message
	data["Next"] = next
	h.render(w, "notice.html", data)
}

// sessionExpired tears the session down on an authorization failure and
// sends the user to login. It reports whether it handled the error.
func (h *Handler) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil || !h.auth.HandleError(err) {
		return false
	}
	h.redirectWithError(w, r, "/login", "Your session has expired. Please log in again.")
	return true
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Page Not Found", "")
	data["Path"] = r.URL.Path
	h.renderStatus(w, http.StatusNotFound, "notfound.html", data)
}

// Root sends the bare root path to the home screen
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.redirect(w, r, "/home")
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
