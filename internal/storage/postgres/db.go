package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streetcode-platform/server/internal/domain/analytics"
	"github.com/streetcode-platform/server/internal/domain/facts"
	"github.com/streetcode-platform/server/internal/domain/media"
	"github.com/streetcode-platform/server/internal/domain/partners"
	"github.com/streetcode-platform/server/internal/domain/sources"
	"github.com/streetcode-platform/server/internal/domain/streetcodes"
	"github.com/streetcode-platform/server/internal/domain/tags"
	"github.com/streetcode-platform/server/internal/domain/timeline"
	"github.com/streetcode-platform/server/internal/domain/toponyms"
	"github.com/streetcode-platform/server/internal/domain/users"
	"github.com/streetcode-platform/server/internal/storage"
)

type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Streetcodes() streetcodes.Repository {
	return &StreetcodeRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Facts() facts.Repository {
	return &FactRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Tags() tags.Repository {
	return &TagRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Toponyms() toponyms.Repository {
	return &ToponymRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Partners() partners.Repository {
	return &PartnerRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Timeline() timeline.Repository {
	return &TimelineRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Sources() sources.Repository {
	return &SourceRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Media() media.Repository {
	return &MediaRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Analytics() analytics.Repository {
	return &AnalyticsRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{pool: r.pool, tx: r.tx}
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
