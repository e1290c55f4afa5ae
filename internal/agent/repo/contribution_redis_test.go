package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trakt-agent/server/internal/agent/model"
)

func TestContributionRepositorySave(t *testing.T) {
	ctx := context.Background()
	r := NewRedisContributionRepository(newTestRedis(t))
	r.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}

	id, err := r.Save(ctx, &model.ContributionReport{
		Type:        "error_report",
		Description: "escrow node panics on empty input",
		Details:     "steps to reproduce ...",
		Impact:      "chat turn fails",
		Priority:    "high",
	})
	require.NoError(t, err)
	assert.Contains(t, id, "2026-08-31T12-00-00Z")
	// colon-free so the id is safe in keys and filenames
	assert.NotContains(t, id, ":")
}

func TestContributionRepositorySaveNil(t *testing.T) {
	ctx := context.Background()
	r := NewRedisContributionRepository(newTestRedis(t))

	_, err := r.Save(ctx, nil)
	assert.Error(t, err)
}

func TestContributionRepositoryUniqueIDs(t *testing.T) {
	ctx := context.Background()
	r := NewRedisContributionRepository(newTestRedis(t))

	report := &model.ContributionReport{Type: "code_contribution", Description: "d"}
	id1, err := r.Save(ctx, report)
	require.NoError(t, err)
	id2, err := r.Save(ctx, report)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}
