package storage

import (
	"context"

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
)

// Repository groups data access by domain. WithTx runs fn against a
// transaction-bound view of the same repositories; callers commit once per
// logical operation, not per repository call.
type Repository interface {
	Streetcodes() streetcodes.Repository
	Facts() facts.Repository
	Tags() tags.Repository
	Toponyms() toponyms.Repository
	Partners() partners.Repository
	Timeline() timeline.Repository
	Sources() sources.Repository
	Media() media.Repository
	Analytics() analytics.Repository
	Users() users.Repository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
