package middleware

import (
	"context"
	"io"
	"net/http"

	"github.com/findosh/wiprox/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// SessionSource is the session store as seen by the gate
type SessionSource interface {
	Ready() bool
	Session() models.Session
}

// Gate guards routes on the client session
type Gate struct {
	sessions SessionSource
	log      *zap.SugaredLogger
}

// NewGate creates a new session gate
func NewGate(sessions SessionSource, log *zap.SugaredLogger) *Gate {
	return &Gate{sessions: sessions, log: log}
}

const loadingPage = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><meta http-equiv="refresh" content="1">
<meta name="viewport" content="width=device-width, initial-scale=1"><title>Loading</title></head>
<body class="loading-page"><div class="spinner"></div><p>Loading...</p></body></html>`

// RequireSession lets authenticated requests through. While the session is
// still being restored it shows a loading page and never redirects, so a
// valid persisted session is not bounced to login.
func (g *Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.sessions.Ready() {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusOK)
			if _, err := io.WriteString(w, loadingPage); err != nil {
				g.log.Warnw("failed to write loading page", "path", r.URL.Path, "error", err)
			}
			return
		}

		sess := g.sessions.Session()
		if !sess.IsAuthenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalSession adds the session to the context if there is one, but
// doesn't require it
func (g *Gate) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.sessions.Ready() {
			if sess := g.sessions.Session(); sess.IsAuthenticated() {
				r = r.WithContext(context.WithValue(r.Context(), SessionContextKey, sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession retrieves the session from the request context
func GetSession(r *http.Request) (models.Session, bool) {
	sess, ok := r.Context().Value(SessionContextKey).(models.Session)
	return sess, ok
}
