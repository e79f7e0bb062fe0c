package kvstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"task-tracker/internal/models"
)

const statsKey = "tasks:stats"

// TaskStats is a snapshot of the event counters.
type TaskStats struct {
	Created   int64 `json:"created"`
	Completed int64 `json:"completed"`
}

// Stats keeps per-event-type counters in a Redis hash.
type Stats struct {
	client *redis.Client
	key    string
}

func NewStats(client *redis.Client, prefix string) *Stats {
	return &Stats{client: client, key: prefix + statsKey}
}

// Incr bumps the counter for an event type by one.
func (s *Stats) Incr(ctx context.Context, eventType string) error {
	if err := s.client.HIncrBy(ctx, s.key, eventType, 1).Err(); err != nil {
		return fmt.Errorf("stats incr %s: %w", eventType, err)
	}
	return nil
}

// Snapshot reads all counters. Missing counters read as zero.
func (s *Stats) Snapshot(ctx context.Context) (TaskStats, error) {
	vals, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return TaskStats{}, fmt.Errorf("stats snapshot: %w", err)
	}
	return TaskStats{
		Created:   parseCount(vals[models.EventTaskCreated]),
		Completed: parseCount(vals[models.EventTaskCompleted]),
	}, nil
}

// Reset removes all counters.
func (s *Stats) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func parseCount(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
