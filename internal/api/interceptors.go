package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Interceptor adjusts an outgoing request before it is sent
type Interceptor func(*http.Request) error

type tokenKey struct{}

// WithToken makes requests under ctx authenticate with token instead of the
// accessor's value. Session restore uses it to validate a persisted token
// before adopting it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// BearerToken attaches "Authorization: Bearer <token>" using the token the
// accessor returns at send time. No header is set when there is no token.
func BearerToken(accessor func() string) Interceptor {
	return func(r *http.Request) error {
		token, ok := r.Context().Value(tokenKey{}).(string)
		if !ok && accessor != nil {
			token = accessor()
		}
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// RequestID tags each request with a fresh X-Request-ID
func RequestID() Interceptor {
	return func(r *http.Request) error {
		if r.Header.Get("X-Request-ID") == "" {
			r.Header.Set("X-Request-ID", uuid.NewString())
		}
		return nil
	}
}
