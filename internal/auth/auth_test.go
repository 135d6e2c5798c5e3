package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-api/internal/db"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Email:  "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, userID, testSecret, time.Hour)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = ValidateToken(token, "wrong-secret")
	assert.Error(t, err)

	expired := signToken(t, userID, testSecret, -time.Hour)
	_, err = ValidateToken(expired, testSecret)
	assert.Error(t, err)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/articles", nil)
	_, err := ExtractToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "token-without-scheme")
	_, err = ExtractToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Bearer abc")
	token, err := ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func newBlacklist(t *testing.T) (*miniredis.Miniredis, *db.RedisClient) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := db.NewRedisClient(db.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRequireAuth(t *testing.T) {
	mr, blacklist := newBlacklist(t)
	guard := NewGuard(testSecret, blacklist)

	userID := uuid.New()
	var gotCaller uuid.UUID
	handler := guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No token at all.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/articles", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/articles", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	token := signToken(t, userID, testSecret, time.Hour)
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/articles", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotCaller)

	// The same token after logout is rejected.
	mr.Set("blacklist:"+token, "1")
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/articles", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	_, blacklist := newBlacklist(t)
	guard := NewGuard(testSecret, blacklist)

	userID := uuid.New()
	var gotCaller uuid.UUID
	handler := guard.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous requests pass through with a nil caller.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil, gotCaller)

	// A valid token resolves.
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/articles", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, userID, testSecret, time.Hour))
	handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotCaller)
}
