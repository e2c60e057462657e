package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/streetcode-platform/server/internal/storage/postgres"
)

var sweepTimeout int

// sweepCmd runs one pass of the expired refresh token sweep. The serve
// command schedules the same work periodically through River; this command
// exists for manual runs and cron-style deployments without the server.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired refresh tokens",
	Long: `Delete every refresh token past its expiry time.

Reads the database connection string from DATABASE_URL. Tokens still inside
their lifetime are left untouched, so active sessions survive the sweep.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().IntVar(&sweepTimeout, "timeout", 60, "timeout in seconds")
}

func runSweep(cmd *cobra.Command, args []string) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(sweepTimeout)*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("build repository: %w", err)
	}

	now := time.Now().UTC()
	userIDs, err := repo.Users().UserIDsWithExpiredTokens(ctx, now)
	if err != nil {
		return fmt.Errorf("list users with expired tokens: %w", err)
	}

	var totalDeleted int64
	for _, userID := range userIDs {
		deleted, err := repo.Users().DeleteExpiredTokensForUser(ctx, userID, now)
		if err != nil {
			return fmt.Errorf("sweep tokens for user %s: %w", userID, err)
		}
		totalDeleted += deleted
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired refresh token(s) across %d user(s)\n", totalDeleted, len(userIDs))
	return nil
}
