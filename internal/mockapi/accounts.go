package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/findosh/wiprox/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPhoneExists     = errors.New("phone number already registered")
	ErrInvalidReferral = errors.New("invalid referral code")
)

type ctxKey struct{}

// SeedUser describes an account created directly, bypassing registration
type SeedUser struct {
	FullName          string
	Phone             string
	Password          string
	Balance           decimal.Decimal
	WithdrawalBalance decimal.Decimal
	ReferredBy        string // referral code of the inviter
}

// Seed creates an account and returns its ID
func (s *Server) Seed(u SeedUser) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.createLocked(u.FullName, u.Phone, u.Password, u.Password, u.ReferredBy)
	if err != nil {
		return "", err
	}
	a.Balance = u.Balance
	a.WithdrawalBalance = u.WithdrawalBalance
	return a.ID, nil
}

func (s *Server) createLocked(fullName, phone, password, withdrawalPassword, referredBy string) (*account, error) {
	if _, ok := s.byPhone[phone]; ok {
		return nil, ErrPhoneExists
	}
	if referredBy != "" {
		if _, ok := s.byReferral[referredBy]; !ok {
			return nil, ErrInvalidReferral
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	wHash, err := bcrypt.GenerateFromPassword([]byte(withdrawalPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash withdrawal password: %w", err)
	}

	now := s.cfg.Now()
	a := &account{
		ID:                 uuid.NewString(),
		FullName:           fullName,
		Phone:              phone,
		PasswordHash:       hash,
		WithdrawalPassHash: wHash,
		ReferralCode:       strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
		ReferredBy:         referredBy,
		Records:            make(map[models.RecordKind][]models.Record),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.accounts[a.ID] = a
	s.byPhone[phone] = a.ID
	s.byReferral[a.ReferralCode] = a.ID
	return a, nil
}

// IssueToken signs a session token for the user
func (s *Server) IssueToken(userID string) (string, error) {
	now := s.cfg.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.cfg.Now))
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		userID, err := s.validateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		s.mu.Lock()
		_, ok := s.accounts[userID]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "User not found")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withAccount runs fn with the authenticated account under the lock
func (s *Server) withAccount(r *http.Request, fn func(a *account)) {
	userID, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID]
	fn(a)
	a.UpdatedAt = s.cfg.Now()
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[s.byPhone[strings.TrimSpace(in.Phone)]]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(in.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid phone number or password")
		return
	}

	s.respondWithSession(w, http.StatusOK, a)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FullName           string `json:"full_name"`
		Phone              string `json:"phone"`
		Password           string `json:"password"`
		WithdrawalPassword string `json:"withdrawal_password"`
	}
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.FullName == "" || in.Phone == "" || in.Password == "" || in.WithdrawalPassword == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(in.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	s.mu.Lock()
	a, err := s.createLocked(in.FullName, in.Phone, in.Password, in.WithdrawalPassword, mux.Vars(r)["code"])
	s.mu.Unlock()
	switch {
	case errors.Is(err, ErrPhoneExists):
		writeError(w, http.StatusConflict, "Phone number already registered")
		return
	case errors.Is(err, ErrInvalidReferral):
		writeError(w, http.StatusBadRequest, "Invalid referral code")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.respondWithSession(w, http.StatusCreated, a)
}

func (s *Server) respondWithSession(w http.ResponseWriter, status int, a *account) {
	token, err := s.IssueToken(a.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	writeJSON(w, status, map[string]interface{}{
		"token": token,
		"user":  a.summary(),
	})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	var p models.UserProfile
	s.withAccount(r, func(a *account) { p = a.profile() })
	writeJSON(w, http.StatusOK, p)
}

// ExpiredToken signs a token for userID that expired an hour ago
func (s *Server) ExpiredToken(userID string) (string, error) {
	now := s.cfg.Now().Add(-2 * time.Hour)
	claims := jwt.MapClaims{"sub": userID, "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}
