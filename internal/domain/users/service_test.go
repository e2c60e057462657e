package users

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/streetcode-platform/server/internal/auth"
)

type memoryUserRepo struct {
	users      map[string]*User
	tokens     map[int64]*RefreshToken
	nextToken  int64
	lastLogins map[string]bool
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:      make(map[string]*User),
		tokens:     make(map[int64]*RefreshToken),
		lastLogins: make(map[string]bool),
	}
}

func (m *memoryUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, ErrNotFound
}

func (m *memoryUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUserRepo) Create(_ context.Context, record CreateUserRecord) (*User, error) {
	user := &User{
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

func (m *memoryUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	m.lastLogins[id] = true
	return nil
}

func (m *memoryUserRepo) InsertRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.nextToken++
	m.tokens[m.nextToken] = &RefreshToken{
		ID:        m.nextToken,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memoryUserRepo) GetRefreshToken(_ context.Context, userID, tokenHash string) (*RefreshToken, error) {
	for _, token := range m.tokens {
		if token.UserID == userID && token.TokenHash == tokenHash {
			return token, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUserRepo) DeleteRefreshToken(_ context.Context, id int64) error {
	delete(m.tokens, id)
	return nil
}

func (m *memoryUserRepo) DeleteRefreshTokensForUser(_ context.Context, userID string) error {
	for id, token := range m.tokens {
		if token.UserID == userID {
			delete(m.tokens, id)
		}
	}
	return nil
}

func (m *memoryUserRepo) UserIDsWithExpiredTokens(_ context.Context, now time.Time) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, token := range m.tokens {
		if !token.ExpiresAt.After(now) && !seen[token.UserID] {
			seen[token.UserID] = true
			out = append(out, token.UserID)
		}
	}
	return out, nil
}

func (m *memoryUserRepo) DeleteExpiredTokensForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	var deleted int64
	for id, token := range m.tokens {
		if token.UserID == userID && !token.ExpiresAt.After(now) {
			delete(m.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func newTestService(repo Repository) *Service {
	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, "streetcode")
	return NewService(repo, tokens, 15*time.Minute, 168*time.Hour, zerolog.Nop())
}

func registerTestUser(t *testing.T, repo *memoryUserRepo, username, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@streetcode.local",
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
		IsActive:     true,
	}
	repo.users[user.ID] = user
	return user
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestService(newMemoryUserRepo())
	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "ostap",
		Email:    "ostap@streetcode.local",
		Password: "short",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "password")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "lesia", "irrelevant")
	repo.users["user-lesia"].Email = "lesia@streetcode.local"

	svc := newTestService(repo)
	_, err := svc.Register(context.Background(), RegisterParams{
		Username: "other",
		Email:    "lesia@streetcode.local",
		Password: "longenoughpassword",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "ivan", "correct-horse-battery")
	svc := newTestService(repo)

	pair, user, err := svc.Login(context.Background(), "ivan", "correct-horse-battery")
	require.NoError(t, err)
	require.Equal(t, "user-ivan", user.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.True(t, pair.ExpiresAt.After(time.Now()))
	require.Len(t, repo.tokens, 1)
	require.True(t, repo.lastLogins["user-ivan"])
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "ivan", "correct-horse-battery")
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "ivan", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := newTestService(newMemoryUserRepo())
	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "ivan", "correct-horse-battery")
	svc := newTestService(repo)

	pair, _, err := svc.Login(context.Background(), "ivan", "correct-horse-battery")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The rotated-out token is gone: replaying it must fail.
	_, err = svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsExpiredStoredToken(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "ivan", "correct-horse-battery")
	svc := newTestService(repo)

	pair, _, err := svc.Login(context.Background(), "ivan", "correct-horse-battery")
	require.NoError(t, err)

	for _, token := range repo.tokens {
		token.ExpiresAt = time.Now().Add(-time.Minute)
	}

	_, err = svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsForgedAccessToken(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "ivan", "correct-horse-battery")
	svc := newTestService(repo)

	pair, _, err := svc.Login(context.Background(), "ivan", "correct-horse-battery")
	require.NoError(t, err)

	forger := auth.NewTokenManager("other-secret", time.Hour, "streetcode")
	forged, err := forger.Generate("user-ivan", auth.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), forged, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogoutClearsAllTokens(t *testing.T) {
	repo := newMemoryUserRepo()
	registerTestUser(t, repo, "ivan", "correct-horse-battery")
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "ivan", "correct-horse-battery")
	require.NoError(t, err)
	_, _, err = svc.Login(context.Background(), "ivan", "correct-horse-battery")
	require.NoError(t, err)
	require.Len(t, repo.tokens, 2)

	require.NoError(t, svc.Logout(context.Background(), "user-ivan"))
	require.Empty(t, repo.tokens)
}
