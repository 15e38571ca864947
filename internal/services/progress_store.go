package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"github.com/redis/go-redis/v9"
)

var ErrProgressNotFound = errors.New("migration run not found")

// ProgressStore keeps the latest progress snapshot of each migration run in
// Redis.
type ProgressStore struct {
	redis redis.Cmdable
	ttl   time.Duration
}

func NewProgressStore(redis redis.Cmdable, ttl time.Duration) *ProgressStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ProgressStore{redis: redis, ttl: ttl}
}

func progressKey(runID string) string {
	return fmt.Sprintf("migration:progress:%s", runID)
}

// Report implements migration.Reporter. Write failures are logged only.
func (s *ProgressStore) Report(ctx context.Context, p migration.Progress) {
	data, err := json.Marshal(p)
	if err != nil {
		logger.Warn("progress marshal failed", logger.String("run_id", p.RunID), logger.ErrorField(err))
		return
	}
	if err := s.redis.Set(ctx, progressKey(p.RunID), data, s.ttl).Err(); err != nil {
		logger.Warn("progress write failed", logger.String("run_id", p.RunID), logger.ErrorField(err))
	}
}

func (s *ProgressStore) Get(ctx context.Context, runID string) (*migration.Progress, error) {
	data, err := s.redis.Get(ctx, progressKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	var p migration.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &p, nil
}
