// file: internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"engagehub/internal/config"
	"engagehub/internal/contextutils"

	"go.uber.org/zap"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-key-of-sufficient-length"

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:        testSecret,
		TokenIssuer:      "engagehub",
		AllowedClockSkew: 30 * time.Second,
	}
}

func signToken(t *testing.T, userID int64, role, issuer, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRequireAuthValidToken(t *testing.T) {
	am := NewAuthMiddleware(testAuthConfig(), zap.NewNop())

	var gotUserID int64
	var gotRole string
	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = contextutils.GetUserID(r.Context())
		gotRole = contextutils.GetUserRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "moderator", "engagehub", testSecret, time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotUserID)
	assert.Equal(t, "moderator", gotRole)
}

func TestRequireAuthRejections(t *testing.T) {
	am := NewAuthMiddleware(testAuthConfig(), zap.NewNop())
	handler := am.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"wrong secret":   "Bearer " + signToken(t, 42, "user", "engagehub", "some-other-secret-value-entirely", time.Hour),
		"wrong issuer":   "Bearer " + signToken(t, 42, "user", "impostor", testSecret, time.Hour),
		"expired":        "Bearer " + signToken(t, 42, "user", "engagehub", testSecret, -time.Hour),
		"zero user id":   "Bearer " + signToken(t, 0, "user", "engagehub", testSecret, time.Hour),
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	am := NewAuthMiddleware(testAuthConfig(), zap.NewNop())

	handler := am.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Zero(t, contextutils.GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	am := NewAuthMiddleware(testAuthConfig(), zap.NewNop())
	handler := am.RequireAuth(am.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "user", "engagehub", testSecret, time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, 42, "admin", "engagehub", testSecret, time.Hour))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
