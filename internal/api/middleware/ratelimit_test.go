package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streetcode-platform/server/internal/config"
	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 2}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes", nil)
		req.RemoteAddr = "203.0.113.5:1234"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes", nil)
	req.RemoteAddr = "203.0.113.5:1234"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.Equal(t, "60", res.Header().Get("Retry-After"))
}

func TestRateLimitReadsTierFromContext(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 100, LoginPer15Minutes: 1}
	limited := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := WithRateLimitTierHandler(TierLogin)(limited)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.6:1234"
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "203.0.113.6:1234"
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.Equal(t, "180", res.Header().Get("Retry-After"))
}

func TestRateLimitTracksClientsSeparately(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 1}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes", nil)
	first.RemoteAddr = "203.0.113.8:1000"
	firstRes := httptest.NewRecorder()
	handler.ServeHTTP(firstRes, first)
	require.Equal(t, http.StatusOK, firstRes.Code)

	second := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes", nil)
	second.RemoteAddr = "203.0.113.9:1000"
	secondRes := httptest.NewRecorder()
	handler.ServeHTTP(secondRes, second)
	require.Equal(t, http.StatusOK, secondRes.Code)
}

func TestRateLimitUnlimitedWhenZero(t *testing.T) {
	cfg := config.RateLimitConfig{}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes", nil)
		req.RemoteAddr = "203.0.113.5:1234"
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		require.Equal(t, http.StatusOK, res.Code)
	}
}
