// Package auth provides the client session: restoring it on start, login,
// registration and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/findosh/wiprox/internal/api"
	"github.com/findosh/wiprox/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrCredentialsRequired = errors.New("phone number and password are required")
	ErrRegistrationFields  = errors.New("all fields are required")
)

// Backend is the part of the REST API the session needs
type Backend interface {
	Login(ctx context.Context, in api.Credentials) (*api.AuthResponse, error)
	Register(ctx context.Context, in api.RegisterInput, referralCode string) (*api.AuthResponse, error)
	Me(ctx context.Context) (*models.UserProfile, error)
}

// ProfileCache receives the profile fetched during restore and is wiped on
// logout
type ProfileCache interface {
	Put(p *models.UserProfile) error
	Clear() error
}

// Service handles authentication operations
type Service struct {
	store   *Store
	backend Backend
	cache   ProfileCache
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewService creates a new auth service
func NewService(store *Store, backend Backend, cache ProfileCache, log *zap.SugaredLogger) *Service {
	return &Service{
		store:   store,
		backend: backend,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
}

// Store returns the session store the service manages
func (s *Service) Store() *Store {
	return s.store
}

// Initialize restores the session from the persisted token. It always ends
// with the store ready. A failure leaves an empty session and no persisted
// token, unless a login replaced the session while the token was checked.
func (s *Service) Initialize(ctx context.Context) {
	defer s.store.markReady()

	token, err := s.store.tokens.Token()
	if err != nil {
		s.log.Errorw("failed to read persisted token", "error", err)
		return
	}
	if token == "" {
		return
	}

	if tokenExpired(token, s.now()) {
		s.log.Infow("persisted token expired, clearing")
		s.discard(token)
		return
	}

	profile, err := s.backend.Me(api.WithToken(ctx, token))
	if err != nil {
		s.log.Warnw("session restore failed", "error", err)
		s.discard(token)
		return
	}

	if !s.store.restore(token, profile.Summary()) {
		s.log.Infow("session replaced during restore, keeping the new one")
		return
	}
	if s.cache != nil {
		if err := s.cache.Put(profile); err != nil {
			s.log.Warnw("failed to cache profile", "error", err)
		}
	}
	s.log.Infow("session restored", "user", profile.ID.String())
}

// discard drops a persisted token that failed restore, along with the cached
// profile, if no newer session has been adopted since.
func (s *Service) discard(token string) {
	dropped, err := s.store.discard(token)
	if err != nil {
		s.log.Errorw("failed to clear session", "error", err)
		return
	}
	if !dropped {
		s.log.Infow("session replaced during restore, keeping the new one")
		return
	}
	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			s.log.Errorw("failed to clear profile cache", "error", err)
		}
	}
}

// tokenExpired reports whether token is a JWT whose exp is in the past.
// Opaque tokens are left for the backend to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Login authenticates with phone and password and adopts the session
func (s *Service) Login(ctx context.Context, phone, password string) (*models.UserSummary, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, models.Invalid(ErrCredentialsRequired)
	}

	resp, err := s.backend.Login(ctx, api.Credentials{Phone: phone, Password: password})
	if err != nil {
		return nil, err
	}
	if err := s.adopt(resp); err != nil {
		return nil, err
	}
	s.log.Infow("logged in", "user", resp.User.ID.String())
	return &resp.User, nil
}

// Register creates an account and adopts its session
func (s *Service) Register(ctx context.Context, in api.RegisterInput, referralCode string) (*models.UserSummary, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.FullName == "" || in.Phone == "" || in.Password == "" || in.WithdrawalPassword == "" {
		return nil, models.Invalid(ErrRegistrationFields)
	}

	resp, err := s.backend.Register(ctx, in, referralCode)
	if err != nil {
		return nil, err
	}
	if err := s.adopt(resp); err != nil {
		return nil, err
	}
	s.log.Infow("registered", "user", resp.User.ID.String(), "referred", referralCode != "")
	return &resp.User, nil
}

func (s *Service) adopt(resp *api.AuthResponse) error {
	user := resp.User
	if err := s.store.SetAuthData(resp.Token, &user); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Logout ends the session locally. The backend is not called.
func (s *Service) Logout() error {
	if err := s.store.clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			return fmt.Errorf("failed to clear profile cache: %w", err)
		}
	}
	return nil
}

// HandleError tears the session down when err is an authorization failure
// and reports whether it did. Callers then send the user to login.
func (s *Service) HandleError(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	s.log.Infow("session rejected by backend, logging out", "status", api.StatusCode(err))
	s.teardown()
	return true
}

// UpdateIdentity refreshes the cached identity from a newer profile
func (s *Service) UpdateIdentity(p *models.UserProfile) {
	if p != nil {
		s.store.setUser(p.Summary())
	}
}

func (s *Service) teardown() {
	if err := s.Logout(); err != nil {
		s.log.Errorw("failed to clear session", "error", err)
	}
}
