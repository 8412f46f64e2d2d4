package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DeadLetterWriter is the part of the Redis client used to park messages
// that keep failing
type DeadLetterWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type RetryHandler struct {
	client        DeadLetterWriter
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
}

func NewRetryHandler(client DeadLetterWriter, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    3,
		baseDelay:     500 * time.Millisecond,
		maxDelay:      10 * time.Second,
	}
}

func (r *RetryHandler) delay(attempt int) time.Duration {
	d := r.baseDelay << attempt
	if d > r.maxDelay || d <= 0 {
		d = r.maxDelay
	}
	return d
}

// RetryWithBackoff runs fn until it succeeds, doubling the pause between
// attempts. Configuration errors are not retried. When every attempt fails
// the message is written to the dead letter stream and the last error is
// returned.
func (r *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, msgID string, fields map[string]interface{}) error {
	var err error
	attempts := 0
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		attempts++
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, duplink.ErrConfig) {
			break
		}
		if attempt == r.maxRetries {
			break
		}

		wait := r.delay(attempt)
		log.Warn().
			Err(err).
			Str("message_id", msgID).
			Int("attempt", attempts).
			Dur("backoff", wait).
			Msg("Processing failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if dlqErr := r.sendToDeadLetter(ctx, msgID, fields, err, attempts); dlqErr != nil {
		return fmt.Errorf("%w (dead letter: %v)", err, dlqErr)
	}
	return err
}

func (r *RetryHandler) sendToDeadLetter(ctx context.Context, msgID string, fields map[string]interface{}, cause error, attempts int) error {
	values := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = msgID
	values["error"] = cause.Error()
	values["attempts"] = attempts
	values["failed_at"] = time.Now().UTC().Format(time.RFC3339)

	if err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		log.Error().Err(err).Str("message_id", msgID).Msg("Failed to write message to dead letter stream")
		return err
	}

	log.Error().
		Err(cause).
		Str("message_id", msgID).
		Str("dead_letter", r.deadLetterKey).
		Int("attempts", attempts).
		Msg("Message moved to dead letter stream")
	return nil
}
