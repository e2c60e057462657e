package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/streetcode-platform/server/internal/domain/users"
	"github.com/streetcode-platform/server/internal/metrics"
)

// TokenSweepArgs defines the periodic job that clears expired refresh tokens.
type TokenSweepArgs struct{}

func (TokenSweepArgs) Kind() string { return JobKindTokenSweep }

// TokenSweepWorker walks every user holding at least one expired refresh
// token and deletes those rows. Tokens still inside their lifetime are left
// untouched, so an active session survives the sweep.
type TokenSweepWorker struct {
	river.WorkerDefaults[TokenSweepArgs]
	Repo   users.Repository
	Logger *slog.Logger
}

func (TokenSweepWorker) Kind() string { return JobKindTokenSweep }

func (w TokenSweepWorker) Work(ctx context.Context, job *river.Job[TokenSweepArgs]) error {
	if w.Repo == nil {
		return fmt.Errorf("repository not configured")
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	now := start.UTC()

	userIDs, err := w.Repo.UserIDsWithExpiredTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("list users with expired tokens: %w", err)
	}

	var totalDeleted int64
	for _, userID := range userIDs {
		deleted, err := w.Repo.DeleteExpiredTokensForUser(ctx, userID, now)
		if err != nil {
			logger.Error("failed to sweep refresh tokens",
				"user_id", userID,
				"error", err,
			)
			return fmt.Errorf("sweep tokens for user %s: %w", userID, err)
		}
		totalDeleted += deleted
	}
	metrics.RefreshTokensSwept.Add(float64(totalDeleted))

	logger.Info("refresh token sweep finished",
		"users_swept", len(userIDs),
		"tokens_deleted", totalDeleted,
		"duration", time.Since(start),
		"attempt", job.Attempt,
	)
	return nil
}
