package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/streetcode-platform/server/internal/auth"
)

const (
	// BcryptCost is the cost factor for password hashing.
	BcryptCost = 12

	minPasswordLength = 12
)

type RegisterParams struct {
	Username string `validate:"required,min=3,max=50,alphanumunicode"`
	Email    string `validate:"required,email,max=100"`
	Password string `validate:"required"`
}

// TokenPair is what a successful login or refresh hands to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type Service struct {
	repo            Repository
	tokens          *auth.TokenManager
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	logger          zerolog.Logger
	validate        *validator.Validate
}

func NewService(repo Repository, tokens *auth.TokenManager, accessTokenTTL, refreshTokenTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:            repo,
		tokens:          tokens,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		logger:          logger.With().Str("component", "users").Logger(),
		validate:        validator.New(),
	}
}

// Register creates a new account with the default role.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}
	if len(params.Password) < minPasswordLength {
		return nil, fmt.Errorf("invalid registration: password must be at least %d characters", minPasswordLength)
	}

	if existing, err := s.repo.GetByEmail(ctx, params.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing, err := s.repo.GetByUsername(ctx, params.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, CreateUserRecord{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, *User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, nil, ErrInvalidCredentials
		}
		return TokenPair{}, nil, err
	}
	if !user.IsActive {
		return TokenPair{}, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return TokenPair{}, nil, err
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("last login update failed")
	}
	return pair, user, nil
}

// Refresh rotates the refresh token. The presented access token may be
// expired; its signature must still verify. The old refresh token row is
// removed and a fresh pair is issued.
func (s *Service) Refresh(ctx context.Context, accessToken, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.ParseExpired(accessToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	stored, err := s.repo.GetRefreshToken(ctx, claims.Subject, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if !stored.ExpiresAt.After(time.Now()) {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	if err := s.repo.DeleteRefreshToken(ctx, stored.ID); err != nil {
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	return s.issuePair(ctx, user)
}

// Logout drops every refresh token the user holds.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.repo.DeleteRefreshTokensForUser(ctx, userID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) issuePair(ctx context.Context, user *User) (TokenPair, error) {
	access, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	raw, hash, err := auth.NewRefreshToken()
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.repo.InsertRefreshToken(ctx, user.ID, hash, time.Now().Add(s.refreshTokenTTL)); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    time.Now().Add(s.accessTokenTTL),
	}, nil
}
