package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already taken")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// RefreshToken is a stored (hashed) long-lived credential. A token is valid
// exactly while ExpiresAt is in the future.
type RefreshToken struct {
	ID        int64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type CreateUserRecord struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, record CreateUserRecord) (*User, error)
	UpdateLastLogin(ctx context.Context, id string) error

	InsertRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, userID, tokenHash string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, id int64) error
	DeleteRefreshTokensForUser(ctx context.Context, userID string) error

	// Sweep support: users holding at least one token expired as of now, and
	// the per-user cleanup the sweep performs.
	UserIDsWithExpiredTokens(ctx context.Context, now time.Time) ([]string, error)
	DeleteExpiredTokensForUser(ctx context.Context, userID string, now time.Time) (int64, error)
}
