package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

// Counter folds task events into running totals.
type Counter interface {
	Incr(ctx context.Context, eventType string) error
}

// Config selects the topic and consumer group.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// fetchBackoff is the pause after a failed fetch before the next attempt.
const fetchBackoff = time.Second

// messageReader is the part of *kafka.Reader the consumer loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Run consumes task events and bumps the counters until ctx is cancelled.
// One consumer per process; replicas share partitions through the group.
func Run(ctx context.Context, cfg Config, counter Counter) {
	if len(cfg.Brokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.Topic, "group", cfg.GroupID)
	consume(ctx, reader, counter, fetchBackoff)
	logger.Info(ctx, "Kafka consumer stopped")
}

func consume(ctx context.Context, reader messageReader, counter Counter, backoff time.Duration) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}
		if err := handleMessage(ctx, counter, msg.Value); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
		}
		// Commit failures too so a poison message cannot block the partition.
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

func handleMessage(ctx context.Context, counter Counter, payload []byte) error {
	var ev models.TaskEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("decode task event: %w", err)
	}
	switch ev.Type {
	case models.EventTaskCreated, models.EventTaskCompleted:
		return counter.Incr(ctx, ev.Type)
	default:
		logger.Debug(ctx, "Worker skipped unknown event", "type", ev.Type)
		return nil
	}
}
