package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
)

// StatRollupArgs defines the periodic job that folds QR scan counters into
// streetcode view counts.
type StatRollupArgs struct{}

func (StatRollupArgs) Kind() string { return JobKindStatRollup }

// StatRollupWorker recomputes each streetcode's view_count from its
// statistic records so catalog listings read one denormalized column instead
// of aggregating on every request.
type StatRollupWorker struct {
	river.WorkerDefaults[StatRollupArgs]
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

func (StatRollupWorker) Kind() string { return JobKindStatRollup }

func (w StatRollupWorker) Work(ctx context.Context, job *river.Job[StatRollupArgs]) error {
	if w.Pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()

	tag, err := w.Pool.Exec(ctx, `
UPDATE streetcodes s
   SET view_count = agg.total
  FROM (
    SELECT streetcode_id, sum(count) AS total
      FROM statistic_records
     GROUP BY streetcode_id
  ) agg
 WHERE agg.streetcode_id = s.id
   AND s.view_count <> agg.total
`)
	if err != nil {
		return fmt.Errorf("roll up statistic counts: %w", err)
	}

	logger.Info("statistic rollup finished",
		"streetcodes_updated", tag.RowsAffected(),
		"duration", time.Since(start),
		"attempt", job.Attempt,
	)
	return nil
}
