package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

type stubWriter struct {
	mu    sync.Mutex
	msgs  []kafka.Message
	err   error
	block chan struct{}
}

func (s *stubWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *stubWriter) Close() error { return nil }

func TestPublishActivity(t *testing.T) {
	w := &stubWriter{}
	p := newKafkaPublisher(w, nil, 8)
	created := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	err := p.PublishActivity(context.Background(), dom.Activity{
		ID:          "a1",
		WorkspaceID: "ws1",
		UserID:      "u1",
		Type:        dom.ActivityStatusChange,
		EntityType:  "project",
		EntityID:    "p1",
		Action:      "status_changed",
		NewValue:    json.RawMessage(`{"status":"COMPLETED"}`),
		CreatedAt:   created,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "ws1", string(msg.Key))
	assert.Equal(t, "activity.STATUS_CHANGE", string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "project", got["entityType"])
	assert.Equal(t, map[string]any{"status": "COMPLETED"}, got["newValue"])
	assert.NotContains(t, got, "oldValue")

	assert.ErrorIs(t, p.PublishActivity(context.Background(), dom.Activity{WorkspaceID: "ws1"}), io.ErrClosedPipe)
	assert.NoError(t, p.Close())
}

func TestPublishActivityDoesNotWaitForBroker(t *testing.T) {
	w := &stubWriter{block: make(chan struct{})}
	p := newKafkaPublisher(w, nil, 2)

	start := time.Now()
	var errs []error
	for i := 0; i < 5; i++ {
		errs = append(errs, p.PublishActivity(context.Background(), dom.Activity{WorkspaceID: "ws1"}))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[4], ErrQueueFull)

	close(w.block)
	require.NoError(t, p.Close())
	assert.NotEmpty(t, w.msgs)
}

func TestPublishActivityLogsWriterError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := newKafkaPublisher(&stubWriter{err: errors.New("broker down")}, zap.New(core), 4)

	require.NoError(t, p.PublishActivity(context.Background(), dom.Activity{WorkspaceID: "ws1"}))
	require.NoError(t, p.Close())

	entries := logs.FilterMessage("activity delivery failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "broker down", entries[0].ContextMap()["error"])

	assert.NoError(t, Nop{}.PublishActivity(context.Background(), dom.Activity{}))
}
