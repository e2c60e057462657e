package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/streetcode-platform/server/internal/api"
	"github.com/streetcode-platform/server/internal/api/problem"
	"github.com/streetcode-platform/server/internal/auth"
	"github.com/streetcode-platform/server/internal/blob"
	"github.com/streetcode-platform/server/internal/config"
	"github.com/streetcode-platform/server/internal/domain/users"
	"github.com/streetcode-platform/server/internal/email"
	"github.com/streetcode-platform/server/internal/instagram"
	"github.com/streetcode-platform/server/internal/jobs"
	"github.com/streetcode-platform/server/internal/metrics"
	"github.com/streetcode-platform/server/internal/payment"
	"github.com/streetcode-platform/server/internal/storage"
	"github.com/streetcode-platform/server/internal/storage/postgres"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Streetcode HTTP server",
	Long: `Start the Streetcode HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Bootstrap admin user if ADMIN_* env vars are set
- Start background workers for token sweeps and statistic rollups
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting streetcode server")

	problem.SetEnvironment(cfg.Environment)
	metrics.Init(Version, GitCommit, BuildDate)

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	if cfg.Database.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	}
	if cfg.Database.MaxIdle > 0 {
		poolCfg.MinConns = int32(cfg.Database.MaxIdle)
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.NewWithConfig(poolCtx, poolCfg)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()
	metrics.RegisterPool(pool)

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("build repository: %w", err)
	}

	blobs, err := blob.NewFileStorage(cfg.Blob.Dir)
	if err != nil {
		return fmt.Errorf("open blob storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrapAdminUser(ctx, repo, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}
	cancel()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)
	usersService := users.NewService(repo.Users(), tokens, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL, logger)

	emailService, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("build email service: %w", err)
	}

	// River background workers: refresh token sweep and statistic rollups.
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slogLevel(cfg.Logging.Level),
	}))
	workers := jobs.NewWorkers(pool, repo.Users(), slogLogger)
	riverClient, err := jobs.NewClient(pool, workers, slogLogger, jobs.NewPeriodicJobs(cfg.Jobs))
	if err != nil {
		return fmt.Errorf("build river client: %w", err)
	}

	riverCtx, riverCancel := context.WithCancel(context.Background())
	defer riverCancel()
	if err := riverClient.Start(riverCtx); err != nil {
		return fmt.Errorf("river workers failed to start: %w", err)
	}
	logger.Info().Msg("river background job workers started")
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error().Err(err).Msg("river workers shutdown error")
		} else {
			logger.Info().Msg("river workers stopped")
		}
	}()

	handler := api.NewRouter(api.Deps{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		Repo:      repo,
		Blobs:     blobs,
		Tokens:    tokens,
		Users:     usersService,
		Email:     emailService,
		Payment:   payment.NewClient(cfg.Payment),
		Instagram: instagram.NewClient(cfg.Instagram),
		Version:   Version,
		GitCommit: GitCommit,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func bootstrapAdminUser(ctx context.Context, repo storage.Repository, cfg config.Config, logger zerolog.Logger) error {
	bootstrap := cfg.AdminBootstrap
	if bootstrap.Username == "" || bootstrap.Password == "" || bootstrap.Email == "" {
		logger.Warn().Msg("admin bootstrap env vars not fully set; skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(bootstrap.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created := false
	err = repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		if _, err := tx.Users().GetByUsername(ctx, bootstrap.Username); err == nil {
			return nil
		} else if !errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("check admin user: %w", err)
		}
		if _, err := tx.Users().GetByEmail(ctx, bootstrap.Email); err == nil {
			return nil
		} else if !errors.Is(err, users.ErrNotFound) {
			return fmt.Errorf("check admin user: %w", err)
		}

		if _, err := tx.Users().Create(ctx, users.CreateUserRecord{
			Username:     bootstrap.Username,
			Email:        bootstrap.Email,
			PasswordHash: string(hash),
			Role:         auth.RoleAdmin,
		}); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		created = true
		return nil
	})
	if err != nil || !created {
		return err
	}

	// Log admin creation - redact email in production to avoid PII leaks
	if cfg.Environment == "production" {
		logger.Info().Str("username", bootstrap.Username).Msg("bootstrapped admin user")
	} else {
		logger.Info().Str("email", bootstrap.Email).Str("username", bootstrap.Username).Msg("bootstrapped admin user")
	}
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
