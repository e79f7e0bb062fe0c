package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/models"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_PublishTaskEvent(t *testing.T) {
	w := &captureWriter{}
	p := NewPublisherWithWriter(w)
	ev := models.TaskEvent{
		ID:         "ev-1",
		Type:       models.EventTaskCompleted,
		TaskID:     17,
		OccurredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.PublishTaskEvent(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "17", string(w.msgs[0].Key))

	var got models.TaskEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ev, got)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	w := &captureWriter{err: errors.New("no brokers")}
	err := NewPublisherWithWriter(w).PublishTaskEvent(context.Background(), models.TaskEvent{TaskID: 1})
	assert.Error(t, err)
}
