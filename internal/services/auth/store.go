package auth

import (
	"context"
	"sync"

	"github.com/findosh/wiprox/internal/models"
)

// TokenStore persists the session token across restarts
type TokenStore interface {
	Token() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Store is the process-wide session: the token, the identity that came with
// it, and whether restoration from the persisted token has finished.
type Store struct {
	tokens TokenStore

	mu      sync.RWMutex
	session models.Session
	ready   chan struct{}
	once    sync.Once
}

// NewStore creates an empty, not yet ready session store
func NewStore(tokens TokenStore) *Store {
	return &Store{tokens: tokens, ready: make(chan struct{})}
}

// Token returns the in-memory token. It is the accessor the API client's
// bearer interceptor reads at send time.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Session returns a copy of the current session
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.session
	if sess.User != nil {
		u := *sess.User
		sess.User = &u
	}
	return sess
}

// IsAuthenticated is true whenever a token is held
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Ready reports whether restoration has finished
func (s *Store) Ready() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// WaitReady blocks until restoration has finished or ctx ends
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) markReady() {
	s.once.Do(func() { close(s.ready) })
}

// SetAuthData adopts a new session. The token is persisted before it becomes
// visible to requests.
func (s *Store) SetAuthData(token string, user *models.UserSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.SaveToken(token); err != nil {
		return err
	}
	s.session = models.Session{Token: token, User: user}
	return nil
}

// restore adopts the session recovered from the persisted token checked. It
// does nothing and returns false when a session was set meanwhile or the
// persisted token is no longer checked.
func (s *Store) restore(checked string, user *models.UserSummary) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unchanged(checked) {
		return false
	}
	s.session = models.Session{Token: checked, User: user}
	return true
}

// discard removes the persisted token checked, under the same conditions as
// restore.
func (s *Store) discard(checked string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unchanged(checked) {
		return false, nil
	}
	return true, s.tokens.ClearToken()
}

// unchanged must be called with mu held
func (s *Store) unchanged(checked string) bool {
	if s.session.Token != "" {
		return false
	}
	persisted, err := s.tokens.Token()
	return err == nil && persisted == checked
}

// setUser replaces the cached identity without touching the token
func (s *Store) setUser(user *models.UserSummary) {
	s.mu.Lock()
	if s.session.Token != "" {
		s.session.User = user
	}
	s.mu.Unlock()
}

// clear drops the in-memory session and the persisted token
func (s *Store) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = models.Session{}
	return s.tokens.ClearToken()
}
