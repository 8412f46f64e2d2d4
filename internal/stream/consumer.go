// Package stream consumes document submissions from a Redis stream.
package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/duplink/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Processor handles one parsed submission
type Processor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission) error
}

// Client is the part of the Redis client the consumer uses
type Client interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XPendingExt(ctx context.Context, a *redis.XPendingExtArgs) *redis.XPendingExtCmd
	XClaim(ctx context.Context, a *redis.XClaimArgs) *redis.XMessageSliceCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XTrimMinID(ctx context.Context, key string, minID string) *redis.IntCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Consumer reads submissions through a consumer group. Entries left pending
// by a crashed consumer are claimed once they have been idle for minIdle.
type Consumer struct {
	client              Client
	streamKey           string
	consumerGroup       string
	consumerName        string
	processor           Processor
	retryHandler        *RetryHandler
	retentionDuration   time.Duration
	pelRecoveryInterval time.Duration
	cleanupInterval     time.Duration
	minIdle             time.Duration
	lastPELCheck        time.Time
}

func NewConsumer(
	client Client,
	streamKey string,
	consumerGroup string,
	consumerName string,
	processor Processor,
	retryHandler *RetryHandler,
	retentionDuration time.Duration,
) *Consumer {
	return &Consumer{
		client:              client,
		streamKey:           streamKey,
		consumerGroup:       consumerGroup,
		consumerName:        consumerName,
		processor:           processor,
		retryHandler:        retryHandler,
		retentionDuration:   retentionDuration,
		pelRecoveryInterval: 30 * time.Second,
		cleanupInterval:     time.Hour,
		minIdle:             time.Minute,
		lastPELCheck:        time.Now(),
	}
}

// Start blocks reading the stream until ctx is done
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create consumer group")
	}

	log.Info().Str("consumer", c.consumerName).Msg("Recovering pending submissions")
	if err := c.recoverPending(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to recover pending submissions on startup")
	}
	c.lastPELCheck = time.Now()

	go c.trimPeriodically(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := c.poll(ctx); err != nil {
			log.Error().Err(err).Msg("Error consuming submissions")
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.consumerGroup, "$").Err()
	if err != nil {
		if strings.Contains(err.Error(), "BUSYGROUP") {
			log.Debug().Str("group", c.consumerGroup).Msg("Consumer group already exists")
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	log.Info().
		Str("group", c.consumerGroup).
		Str("stream", c.streamKey).
		Msg("Created consumer group")
	return nil
}

// recoverPending claims idle entries from the pending entry list and
// processes them
func (c *Consumer) recoverPending(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.streamKey,
		Group:  c.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get pending submissions: %w", err)
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.Idle >= c.minIdle {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.streamKey,
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		MinIdle:  c.minIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to claim submissions: %w", err)
	}

	log.Info().Int("claimed", len(claimed)).Msg("Claimed pending submissions")
	for i := range claimed {
		if err := c.handle(ctx, &claimed[i]); err != nil {
			log.Error().Err(err).Str("message_id", claimed[i].ID).Msg("Failed to process claimed submission")
		}
	}
	return nil
}

func (c *Consumer) poll(ctx context.Context) error {
	if time.Since(c.lastPELCheck) > c.pelRecoveryInterval {
		if err := c.recoverPending(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to recover pending submissions")
		}
		c.lastPELCheck = time.Now()
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.consumerGroup,
		Consumer: c.consumerName,
		Streams:  []string{c.streamKey, ">"},
		Count:    10,
		Block:    time.Second,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream != c.streamKey {
			continue
		}
		for i := range s.Messages {
			if err := c.handle(ctx, &s.Messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", s.Messages[i].ID).Msg("Failed to process submission")
			}
		}
	}
	return nil
}

// handle parses and processes one entry. Malformed entries are acknowledged
// right away; failed entries are acknowledged once the retry handler has
// parked them on the dead letter stream.
func (c *Consumer) handle(ctx context.Context, msg *redis.XMessage) error {
	streamMsg := toStreamMessage(msg)

	submission, err := ParseSubmission(streamMsg)
	if err != nil {
		log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to parse submission")
		c.acknowledge(ctx, msg.ID)
		return err
	}

	fields := make(map[string]interface{}, len(streamMsg.Fields))
	for k, v := range streamMsg.Fields {
		fields[k] = v
	}

	err = c.retryHandler.RetryWithBackoff(ctx, func() error {
		return c.processor.ProcessSubmission(ctx, submission)
	}, msg.ID, fields)
	if err != nil {
		if ctx.Err() == nil {
			c.acknowledge(ctx, msg.ID)
		}
		return err
	}
	return c.acknowledge(ctx, msg.ID)
}

// trimStream removes entries older than the retention window
func (c *Consumer) trimStream(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retentionDuration)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Str("cutoff", cutoff.Format(time.RFC3339)).
			Msg("Trimmed old submissions from stream")
	}
	return nil
}

func (c *Consumer) trimPeriodically(ctx context.Context) {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	if err := c.trimStream(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to run initial stream trim")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.trimStream(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to trim stream")
			}
		}
	}
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.consumerGroup, messageID).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to acknowledge submission")
		return err
	}
	log.Debug().Str("message_id", messageID).Msg("Submission acknowledged")
	return nil
}

func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}
	return &StreamMessage{ID: msg.ID, Fields: fields}
}
