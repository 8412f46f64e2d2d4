package detection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/duplink/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statusTTL = 12 * time.Hour

// StatusStore is the part of the Redis client used for progress keys
type StatusStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

func statusKey(corpusID string) string {
	return "duplink_report_status:" + corpusID
}

func UpdateStatus(ctx context.Context, store StatusStore, corpusID string, step models.Step) error {
	if !step.Valid() {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(corpusID)

	err := store.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("corpusId", corpusID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("corpusId", corpusID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the current step of a corpus, StepIdle when none is
// recorded
func GetStatus(ctx context.Context, store StatusStore, corpusID string) (models.Step, error) {
	val, err := store.Get(ctx, statusKey(corpusID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(val), nil
}
