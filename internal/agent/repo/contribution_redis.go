package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/trakt-agent/server/internal/agent/model"
	errx "github.com/trakt-agent/server/internal/core/error"
	logx "github.com/trakt-agent/server/pkg/logger"
)

// RedisContributionRepository persists contribution reports keyed by a
// timestamp-derived identifier, e.g. contribution:2026-08-31T12-00-00Z-1a2b3c.
type RedisContributionRepository struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisContributionRepository(rdb redis.Cmdable) *RedisContributionRepository {
	return &RedisContributionRepository{rdb: rdb, now: time.Now}
}

func (r *RedisContributionRepository) Save(ctx context.Context, report *model.ContributionReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("contribution report is nil")
	}

	ts := strings.ReplaceAll(r.now().UTC().Format(time.RFC3339), ":", "-")
	id := fmt.Sprintf("%s-%s", ts, uuid.NewString()[:6])
	key := fmt.Sprintf("contribution:%s", id)

	b, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal contribution: %w", err)
	}

	if err := r.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save contribution report")
		return "", errx.WrapRedis(err)
	}

	logx.Debug().Str("key", key).Str("type", report.Type).Msg("Contribution report saved")
	return id, nil
}

var _ model.ContributionRepository = (*RedisContributionRepository)(nil)
