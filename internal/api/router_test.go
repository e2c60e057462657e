package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/auth"
	"github.com/streetcode-platform/server/internal/config"
	"github.com/streetcode-platform/server/internal/domain/analytics"
	"github.com/streetcode-platform/server/internal/domain/facts"
	"github.com/streetcode-platform/server/internal/domain/media"
	"github.com/streetcode-platform/server/internal/domain/partners"
	"github.com/streetcode-platform/server/internal/domain/sources"
	"github.com/streetcode-platform/server/internal/domain/streetcodes"
	"github.com/streetcode-platform/server/internal/domain/tags"
	"github.com/streetcode-platform/server/internal/domain/timeline"
	"github.com/streetcode-platform/server/internal/domain/toponyms"
	"github.com/streetcode-platform/server/internal/domain/users"
	"github.com/streetcode-platform/server/internal/storage"
)

// emptyRepo satisfies storage.Repository without a database. Handlers guard
// against nil services, so routing tests never reach the data layer.
type emptyRepo struct{}

func (emptyRepo) Streetcodes() streetcodes.Repository { return nil }
func (emptyRepo) Facts() facts.Repository             { return nil }
func (emptyRepo) Tags() tags.Repository               { return nil }
func (emptyRepo) Toponyms() toponyms.Repository       { return nil }
func (emptyRepo) Partners() partners.Repository       { return nil }
func (emptyRepo) Timeline() timeline.Repository       { return nil }
func (emptyRepo) Sources() sources.Repository         { return nil }
func (emptyRepo) Media() media.Repository             { return nil }
func (emptyRepo) Analytics() analytics.Repository     { return nil }
func (emptyRepo) Users() users.Repository             { return nil }

func (r emptyRepo) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, r)
}

// noUsersRepo rejects every lookup so login attempts resolve to 401.
type noUsersRepo struct{}

func (noUsersRepo) GetByID(context.Context, string) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (noUsersRepo) GetByUsername(context.Context, string) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (noUsersRepo) GetByEmail(context.Context, string) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (noUsersRepo) Create(context.Context, users.CreateUserRecord) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (noUsersRepo) UpdateLastLogin(context.Context, string) error { return nil }

func (noUsersRepo) InsertRefreshToken(context.Context, string, string, time.Time) error { return nil }

func (noUsersRepo) GetRefreshToken(context.Context, string, string) (*users.RefreshToken, error) {
	return nil, users.ErrNotFound
}

func (noUsersRepo) DeleteRefreshToken(context.Context, int64) error { return nil }

func (noUsersRepo) DeleteRefreshTokensForUser(context.Context, string) error { return nil }

func (noUsersRepo) UserIDsWithExpiredTokens(context.Context, time.Time) ([]string, error) {
	return nil, nil
}

func (noUsersRepo) DeleteExpiredTokensForUser(context.Context, string, time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(cfg config.Config) http.Handler {
	logger := zerolog.Nop()
	tokens := auth.NewTokenManager("test-secret", time.Minute, "test")
	return NewRouter(Deps{
		Config: cfg,
		Logger: logger,
		Repo:   emptyRepo{},
		Tokens: tokens,
		Users:  users.NewService(noUsersRepo{}, tokens, time.Minute, time.Hour, logger),
	})
}

func TestNewRouterRegistersRoutes(t *testing.T) {
	router := newTestRouter(config.Config{})

	liveReq := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	liveRes := httptest.NewRecorder()
	router.ServeHTTP(liveRes, liveReq)
	require.Equal(t, http.StatusOK, liveRes.Code)

	// The index lookup and the {id}/<literal> routes have to coexist.
	indexReq := httptest.NewRequest(http.MethodGet, "/api/v1/streetcode-by-index/abc", nil)
	indexRes := httptest.NewRecorder()
	router.ServeHTTP(indexRes, indexReq)
	require.Equal(t, http.StatusBadRequest, indexRes.Code)

	statusReq := httptest.NewRequest(http.MethodGet, "/api/v1/streetcodes/7/status", nil)
	statusRes := httptest.NewRecorder()
	router.ServeHTTP(statusRes, statusReq)
	require.Equal(t, http.StatusMethodNotAllowed, statusRes.Code)
	require.Equal(t, http.MethodPatch, statusRes.Header().Get("Allow"))
}

func TestLoginBudgetEngagesBeforePublicOne(t *testing.T) {
	router := newTestRouter(config.Config{
		RateLimit: config.RateLimitConfig{
			PublicPerMinute:   100,
			LoginPer15Minutes: 1,
		},
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"username": "ghost", "password": "wrong-password"}`))
		req.RemoteAddr = "203.0.113.7:4242"
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		codes = append(codes, res.Code)
		if res.Code == http.StatusTooManyRequests {
			require.Equal(t, "180", res.Header().Get("Retry-After"))
		}
	}
	require.Equal(t, []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestMethodMux(t *testing.T) {
	getHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("GET response"))
	})
	postHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("POST response"))
	})

	mux := methodMux(map[string]http.Handler{
		http.MethodGet:  getHandler,
		http.MethodPost: postHandler,
	})

	tests := []struct {
		name         string
		method       string
		expectStatus int
		expectBody   string
		expectAllow  string
	}{
		{name: "GET allowed", method: http.MethodGet, expectStatus: http.StatusOK, expectBody: "GET response"},
		{name: "POST allowed", method: http.MethodPost, expectStatus: http.StatusCreated, expectBody: "POST response"},
		{name: "PUT not allowed", method: http.MethodPut, expectStatus: http.StatusMethodNotAllowed, expectAllow: "GET, POST"},
		{name: "DELETE not allowed", method: http.MethodDelete, expectStatus: http.StatusMethodNotAllowed, expectAllow: "GET, POST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/streetcodes", nil)
			res := httptest.NewRecorder()
			mux.ServeHTTP(res, req)

			require.Equal(t, tt.expectStatus, res.Code)
			if tt.expectBody != "" {
				require.Equal(t, tt.expectBody, res.Body.String())
			}
			if tt.expectAllow != "" {
				require.Equal(t, tt.expectAllow, res.Header().Get("Allow"))
			}
		})
	}
}

func TestBodySizeLimitPicksMediaCap(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := bodySizeLimit(echo)

	// 2MB body: over the default cap, under the media cap.
	body := strings.NewReader(strings.Repeat("a", 2<<20))

	uploadReq := httptest.NewRequest(http.MethodPost, "/api/v1/images", body)
	uploadRes := httptest.NewRecorder()
	handler.ServeHTTP(uploadRes, uploadReq)
	require.Equal(t, http.StatusOK, uploadRes.Code)

	body = strings.NewReader(strings.Repeat("a", 2<<20))
	publicReq := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", body)
	publicRes := httptest.NewRecorder()
	handler.ServeHTTP(publicRes, publicReq)
	require.Equal(t, http.StatusRequestEntityTooLarge, publicRes.Code)
}
