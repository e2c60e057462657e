package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/streetcode-platform/server/internal/auth"
	"github.com/streetcode-platform/server/internal/domain/users"
)

type memUsersRepo struct {
	users     map[string]*users.User
	tokens    map[int64]*users.RefreshToken
	nextToken int64
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{
		users:  map[string]*users.User{},
		tokens: map[int64]*users.RefreshToken{},
	}
}

func (m *memUsersRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, users.ErrNotFound
}

func (m *memUsersRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memUsersRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memUsersRepo) Create(_ context.Context, record users.CreateUserRecord) (*users.User, error) {
	user := &users.User{
		ID:           "user-" + record.Username,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Role:         record.Role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memUsersRepo) UpdateLastLogin(_ context.Context, _ string) error { return nil }

func (m *memUsersRepo) InsertRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.nextToken++
	m.tokens[m.nextToken] = &users.RefreshToken{
		ID:        m.nextToken,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memUsersRepo) GetRefreshToken(_ context.Context, userID, tokenHash string) (*users.RefreshToken, error) {
	for _, token := range m.tokens {
		if token.UserID == userID && token.TokenHash == tokenHash {
			return token, nil
		}
	}
	return nil, users.ErrNotFound
}

func (m *memUsersRepo) DeleteRefreshToken(_ context.Context, id int64) error {
	delete(m.tokens, id)
	return nil
}

func (m *memUsersRepo) DeleteRefreshTokensForUser(_ context.Context, userID string) error {
	for id, token := range m.tokens {
		if token.UserID == userID {
			delete(m.tokens, id)
		}
	}
	return nil
}

func (m *memUsersRepo) UserIDsWithExpiredTokens(_ context.Context, _ time.Time) ([]string, error) {
	return nil, nil
}

func (m *memUsersRepo) DeleteExpiredTokensForUser(_ context.Context, _ string, _ time.Time) (int64, error) {
	return 0, nil
}

func newAuthHandler() (*AuthHandler, *memUsersRepo) {
	repo := newMemUsersRepo()
	tokens := auth.NewTokenManager("test-secret-test-secret-test-secret", 15*time.Minute, "streetcode")
	service := users.NewService(repo, tokens, 15*time.Minute, 7*24*time.Hour, zerolog.Nop())
	return NewAuthHandler(service), repo
}

func registerTestUser(t *testing.T, h *AuthHandler) userResponse {
	t.Helper()
	body := `{"username": "editor1", "email": "editor@streetcode.com.ua", "password": "long-enough-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.Register(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var user userResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&user))
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	h, _ := newAuthHandler()

	user := registerTestUser(t, h)
	require.Equal(t, "editor1", user.Username)
	require.Equal(t, auth.RoleUser, user.Role)
	require.True(t, user.IsActive)

	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "editor1", "password": "long-enough-password"}`))
	loginRes := httptest.NewRecorder()
	h.Login(loginRes, loginReq)
	require.Equal(t, http.StatusOK, loginRes.Code)

	var payload loginResponse
	require.NoError(t, json.NewDecoder(loginRes.Body).Decode(&payload))
	require.NotEmpty(t, payload.AccessToken)
	require.NotEmpty(t, payload.RefreshToken)
	require.Equal(t, user.ID, payload.User.ID)
}

func TestLoginBadPassword(t *testing.T) {
	h, _ := newAuthHandler()
	registerTestUser(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "editor1", "password": "wrong-password-entirely"}`))
	res := httptest.NewRecorder()
	h.Login(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	h, _ := newAuthHandler()
	registerTestUser(t, h)

	body := `{"username": "editor1", "email": "other@streetcode.com.ua", "password": "long-enough-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.Register(res, req)
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestRegisterShortPasswordRejected(t *testing.T) {
	h, _ := newAuthHandler()

	body := `{"username": "editor1", "email": "editor@streetcode.com.ua", "password": "short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	res := httptest.NewRecorder()
	h.Register(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	h, repo := newAuthHandler()
	registerTestUser(t, h)

	loginRes := httptest.NewRecorder()
	h.Login(loginRes, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"username": "editor1", "password": "long-enough-password"}`)))
	require.Equal(t, http.StatusOK, loginRes.Code)

	var login loginResponse
	require.NoError(t, json.NewDecoder(loginRes.Body).Decode(&login))

	refreshBody, err := json.Marshal(refreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)

	refreshRes := httptest.NewRecorder()
	h.Refresh(refreshRes, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(string(refreshBody))))
	require.Equal(t, http.StatusOK, refreshRes.Code)

	var rotated tokenPairResponse
	require.NoError(t, json.NewDecoder(refreshRes.Body).Decode(&rotated))
	require.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The old refresh token must be gone after rotation.
	replayRes := httptest.NewRecorder()
	h.Refresh(replayRes, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(string(refreshBody))))
	require.Equal(t, http.StatusUnauthorized, replayRes.Code)
	require.Len(t, repo.tokens, 1)
}

func TestLogoutWithoutClaims(t *testing.T) {
	h, _ := newAuthHandler()

	res := httptest.NewRecorder()
	h.Logout(res, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
