package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/mmynk/billsplitter/internal/auth"
	"github.com/mmynk/billsplitter/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// CallerKey is the context key for the authenticated wallet address.
	CallerKey contextKey = "caller"
)

// WithCaller returns a context carrying the authenticated caller.
func WithCaller(ctx context.Context, caller models.Address) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}

// GetCaller extracts the authenticated wallet address from the context.
func GetCaller(ctx context.Context) (models.Address, bool) {
	caller, ok := ctx.Value(CallerKey).(models.Address)
	return caller, ok
}

// RequireAuth returns an interceptor that validates the bearer token and
// puts the caller's address in the request context. Procedures listed in
// public are let through without a token; a valid token on them still sets
// the caller.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			caller, err := authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				if open[req.Spec().Procedure] {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithCaller(ctx, caller), req)
		}
	}
}

// OptionalAuth returns an interceptor that sets the caller if a valid token
// is present and otherwise lets the request through unchanged.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if caller, err := authenticate(jwtManager, req.Header().Get("Authorization")); err == nil {
				ctx = WithCaller(ctx, caller)
			}
			return next(ctx, req)
		}
	}
}

func authenticate(jwtManager *auth.JWTManager, authHeader string) (models.Address, error) {
	if authHeader == "" {
		return models.Address{}, auth.ErrMissingToken
	}

	// Parse Bearer token
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.Address{}, auth.ErrInvalidToken
	}

	claims, err := jwtManager.Validate(parts[1])
	if err != nil {
		return models.Address{}, err
	}
	return claims.Caller()
}
