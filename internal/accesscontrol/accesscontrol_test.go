package accesscontrol

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaygate/pkg/requestcontext"
)

func TestContextChecker(t *testing.T) {
	checker := ContextChecker{}

	ctx := requestcontext.WithActor(context.Background(), "ops")
	ctx = requestcontext.WithRoles(ctx, []string{string(RoleAdmin)})

	assert.True(t, checker.HasRole(ctx, RoleAdmin, "ops"))

	// The subject must match the authenticated actor.
	assert.False(t, checker.HasRole(ctx, RoleAdmin, "someone-else"))
	assert.False(t, checker.HasRole(ctx, RoleAdmin, ""))

	// No grant, no role.
	plain := requestcontext.WithActor(context.Background(), "viewer")
	assert.False(t, checker.HasRole(plain, RoleAdmin, "viewer"))
}

func TestStaticChecker(t *testing.T) {
	checker := NewStatic(map[string][]Role{
		"ops": {RoleAdmin},
	})

	assert.True(t, checker.HasRole(context.Background(), RoleAdmin, "ops"))
	assert.False(t, checker.HasRole(context.Background(), RoleAdmin, "viewer"))
	assert.False(t, checker.HasRole(context.Background(), "other-role", "ops"))
}

func signedToken(t *testing.T, key []byte, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestRequireAuth(t *testing.T) {
	key := []byte("test-signing-key")
	log := slog.New(slog.DiscardHandler)

	var gotActor string
	var gotRoles []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = requestcontext.Actor(r.Context())
		gotRoles = requestcontext.Roles(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAuth(key, log)(next)

	do := func(authHeader string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token passes claims through", func(t *testing.T) {
		tok := signedToken(t, key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Roles: []string{string(RoleAdmin)},
		})
		rec := do("Bearer " + tok)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ops", gotActor)
		assert.Equal(t, []string{string(RoleAdmin)}, gotRoles)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := do("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := do("Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		tok := signedToken(t, []byte("other-key"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "ops"},
		})
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := signedToken(t, key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing subject", func(t *testing.T) {
		tok := signedToken(t, key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		rec := do("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
