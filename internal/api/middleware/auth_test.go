package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streetcode-platform/server/internal/auth"
	"github.com/stretchr/testify/require"
)

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	return auth.NewTokenManager("test-secret-test-secret-test-sec", 15*time.Minute, "streetcode")
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	handler := Authenticate(newTokenManager(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/streetcodes", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestAuthenticateStoresClaims(t *testing.T) {
	tokens := newTokenManager(t)
	token, err := tokens.Generate("user-1", auth.RoleAdmin)
	require.NoError(t, err)

	var seen *auth.Claims
	handler := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/streetcodes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, seen)
	require.Equal(t, "user-1", seen.Subject)
	require.Equal(t, auth.RoleAdmin, seen.Role)
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	other := auth.NewTokenManager("another-secret-another-secret-ab", 15*time.Minute, "streetcode")
	forged, err := other.Generate("user-1", auth.RoleAdmin)
	require.NoError(t, err)

	handler := Authenticate(newTokenManager(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/streetcodes", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRequireRole(t *testing.T) {
	tokens := newTokenManager(t)
	editorToken, err := tokens.Generate("user-2", auth.RoleEditor)
	require.NoError(t, err)

	chain := Authenticate(tokens)(RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/streetcodes/1", nil)
	req.Header.Set("Authorization", "Bearer "+editorToken)
	res := httptest.NewRecorder()
	chain.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)

	adminToken, err := tokens.Generate("user-3", auth.RoleAdmin)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/streetcodes/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	res = httptest.NewRecorder()
	chain.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}
