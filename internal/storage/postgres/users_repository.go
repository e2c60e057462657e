package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/users"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const userColumns = `id, username, email, password_hash, role, is_active, created_at, last_login_at`

func scanUser(scanner pgx.Row) (users.User, error) {
	var (
		user        users.User
		createdAt   pgtype.Timestamptz
		lastLoginAt pgtype.Timestamptz
	)
	err := scanner.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&createdAt,
		&lastLoginAt,
	)
	if err != nil {
		return users.User{}, err
	}
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}
	if lastLoginAt.Valid {
		value := lastLoginAt.Time
		user.LastLoginAt = &value
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.getBy(ctx, `id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.getBy(ctx, `lower(username) = lower($1)`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getBy(ctx, `lower(email) = lower($1)`, email)
}

func (r *UserRepository) getBy(ctx context.Context, predicate string, arg any) (*users.User, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+predicate, arg)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, record users.CreateUserRecord) (*users.User, error) {
	queryer := r.queryer()
	row := queryer.QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns+`
`, record.Username, record.Email, record.PasswordHash, record.Role)

	user, err := scanUser(row)
	if err != nil {
		switch violatedConstraint(err) {
		case "users_username_unique":
			return nil, users.ErrUsernameTaken
		case "users_email_unique":
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) InsertRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `
INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
VALUES ($1, $2, $3)
`, userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) GetRefreshToken(ctx context.Context, userID, tokenHash string) (*users.RefreshToken, error) {
	queryer := r.queryer()
	var (
		token     users.RefreshToken
		expiresAt pgtype.Timestamptz
		createdAt pgtype.Timestamptz
	)
	err := queryer.QueryRow(ctx, `
SELECT id, user_id, token_hash, expires_at, created_at
  FROM refresh_tokens
 WHERE user_id = $1 AND token_hash = $2
`, userID, tokenHash).Scan(&token.ID, &token.UserID, &token.TokenHash, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if expiresAt.Valid {
		token.ExpiresAt = expiresAt.Time
	}
	if createdAt.Valid {
		token.CreatedAt = createdAt.Time
	}
	return &token, nil
}

func (r *UserRepository) DeleteRefreshToken(ctx context.Context, id int64) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) DeleteRefreshTokensForUser(ctx context.Context, userID string) error {
	queryer := r.queryer()
	_, err := queryer.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}
	return nil
}

func (r *UserRepository) UserIDsWithExpiredTokens(ctx context.Context, now time.Time) ([]string, error) {
	queryer := r.queryer()
	rows, err := queryer.Query(ctx, `
SELECT DISTINCT user_id FROM refresh_tokens WHERE expires_at <= $1
`, now)
	if err != nil {
		return nil, fmt.Errorf("list users with expired tokens: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

func (r *UserRepository) DeleteExpiredTokensForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	queryer := r.queryer()
	tag, err := queryer.Exec(ctx, `
DELETE FROM refresh_tokens WHERE user_id = $1 AND expires_at <= $2
`, userID, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) queryer() dbQueryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
