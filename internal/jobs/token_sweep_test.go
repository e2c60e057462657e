package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/streetcode-platform/server/internal/domain/users"
	"github.com/stretchr/testify/require"
)

type sweepStubRepo struct {
	users.Repository
	tokens map[string][]users.RefreshToken
}

func (r *sweepStubRepo) UserIDsWithExpiredTokens(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	for userID, tokens := range r.tokens {
		for _, token := range tokens {
			if !token.ExpiresAt.After(now) {
				ids = append(ids, userID)
				break
			}
		}
	}
	return ids, nil
}

func (r *sweepStubRepo) DeleteExpiredTokensForUser(ctx context.Context, userID string, now time.Time) (int64, error) {
	var kept []users.RefreshToken
	var deleted int64
	for _, token := range r.tokens[userID] {
		if token.ExpiresAt.After(now) {
			kept = append(kept, token)
		} else {
			deleted++
		}
	}
	r.tokens[userID] = kept
	return deleted, nil
}

func TestTokenSweepDeletesOnlyExpired(t *testing.T) {
	now := time.Now().UTC()
	repo := &sweepStubRepo{
		tokens: map[string][]users.RefreshToken{
			"user-a": {
				{ID: 1, UserID: "user-a", ExpiresAt: now.Add(-time.Hour)},
				{ID: 2, UserID: "user-a", ExpiresAt: now.Add(time.Hour)},
			},
			"user-b": {
				{ID: 3, UserID: "user-b", ExpiresAt: now.Add(-24 * time.Hour)},
			},
			"user-c": {
				{ID: 4, UserID: "user-c", ExpiresAt: now.Add(48 * time.Hour)},
			},
		},
	}

	worker := TokenSweepWorker{Repo: repo}
	err := worker.Work(context.Background(), &river.Job[TokenSweepArgs]{JobRow: &rivertype.JobRow{Attempt: 1}})
	require.NoError(t, err)

	require.Len(t, repo.tokens["user-a"], 1)
	require.Equal(t, int64(2), repo.tokens["user-a"][0].ID)
	require.Empty(t, repo.tokens["user-b"])
	require.Len(t, repo.tokens["user-c"], 1)
}

func TestTokenSweepRequiresRepo(t *testing.T) {
	worker := TokenSweepWorker{}
	err := worker.Work(context.Background(), &river.Job[TokenSweepArgs]{JobRow: &rivertype.JobRow{}})
	require.Error(t, err)
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := NewRetryPolicy()

	attempted := time.Now().UTC()
	job := &rivertype.JobRow{
		Kind:        JobKindTokenSweep,
		Attempt:     2,
		AttemptedAt: &attempted,
	}

	next := policy.NextRetry(job)
	require.Equal(t, attempted.Add(2*time.Minute), next)
}

func TestRetryPolicyUnknownKindUsesDefault(t *testing.T) {
	policy := NewRetryPolicy()

	attempted := time.Now().UTC()
	job := &rivertype.JobRow{
		Kind:        "unknown",
		Attempt:     1,
		AttemptedAt: &attempted,
	}

	next := policy.NextRetry(job)
	require.Equal(t, attempted.Add(30*time.Second), next)
}
