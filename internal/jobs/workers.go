package jobs

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/streetcode-platform/server/internal/domain/users"
)

// NewWorkers registers every background worker the server schedules.
func NewWorkers(pool *pgxpool.Pool, userRepo users.Repository, logger *slog.Logger) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker[TokenSweepArgs](workers, TokenSweepWorker{Repo: userRepo, Logger: logger})
	river.AddWorker[StatRollupArgs](workers, StatRollupWorker{Pool: pool, Logger: logger})
	return workers
}
