// Package auth is the guard in front of the content core: it turns an
// inbound request into an authenticated caller identity, or rejects the
// request before the core runs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken     = errors.New("missing authorization")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// TokenBlacklistChecker reports whether a token has been revoked (logged
// out). The user service writes the blacklist keys; we only read them.
type TokenBlacklistChecker interface {
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

func ValidateToken(tokenString, jwtSecret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// ExtractToken pulls the bearer token off the Authorization header.
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return "", ErrMissingToken
	}
	return token, nil
}

type ctxKey int8

const callerKey ctxKey = iota

// CallerID returns the authenticated caller from the request context, or
// uuid.Nil for an anonymous request.
func CallerID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(callerKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithCaller stamps a caller identity onto the context. Exported for tests.
func WithCaller(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, callerKey, id)
}

// Guard resolves caller identities from bearer tokens, consulting the
// revocation blacklist.
type Guard struct {
	jwtSecret string
	blacklist TokenBlacklistChecker
}

func NewGuard(jwtSecret string, blacklist TokenBlacklistChecker) *Guard {
	return &Guard{jwtSecret: jwtSecret, blacklist: blacklist}
}

// Resolve validates the request's token and returns the caller it belongs
// to. A signed but revoked token is rejected.
func (g *Guard) Resolve(r *http.Request) (uuid.UUID, error) {
	token, err := ExtractToken(r)
	if err != nil {
		return uuid.Nil, err
	}

	claims, err := ValidateToken(token, g.jwtSecret)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	if g.blacklist != nil {
		revoked, err := g.blacklist.IsTokenBlacklisted(r.Context(), token)
		if err != nil {
			return uuid.Nil, fmt.Errorf("check token blacklist: %w", err)
		}
		if revoked {
			return uuid.Nil, ErrTokenBlacklisted
		}
	}
	return claims.UserID, nil
}

// RequireAuth rejects the request with 401 unless a valid caller identity
// resolves; on success the caller id rides the request context.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := g.Resolve(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"Authentication required."}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// OptionalAuth resolves a caller identity when a usable token is present and
// lets the request through anonymously otherwise. Listing and reading
// articles work either way.
func (g *Guard) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller, err := g.Resolve(r); err == nil {
			r = r.WithContext(WithCaller(r.Context(), caller))
		}
		next.ServeHTTP(w, r)
	})
}
