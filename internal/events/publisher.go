// Package events streams workspace activity to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

// Publisher delivers activity records to downstream consumers.
type Publisher interface {
	PublishActivity(ctx context.Context, a dom.Activity) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ErrQueueFull is returned when the background writer has fallen behind.
var ErrQueueFull = errors.New("activity queue is full")

const (
	queueSize    = 1024
	maxBatch     = 100
	writeTimeout = 10 * time.Second
)

// KafkaPublisher writes activities as JSON keyed by workspace id, so one
// workspace's history stays ordered within a partition. Delivery runs in a
// background goroutine; PublishActivity only enqueues.
type KafkaPublisher struct {
	writer messageWriter
	log    *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Message
	done   chan struct{}
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
		BatchSize:              maxBatch,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}, log, queueSize)
}

func newKafkaPublisher(w messageWriter, log *zap.Logger, size int) *KafkaPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &KafkaPublisher{
		writer: w,
		log:    log,
		queue:  make(chan kafka.Message, size),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	batch := make([]kafka.Message, 0, maxBatch)
	for msg := range p.queue {
		batch = append(batch[:0], msg)
	fill:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-p.queue:
				if !ok {
					break fill
				}
				batch = append(batch, next)
			default:
				break fill
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := p.writer.WriteMessages(ctx, batch...); err != nil {
			p.log.Warn("activity delivery failed", zap.Int("messages", len(batch)), zap.Error(err))
		}
		cancel()
	}
}

type activityEvent struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	UserID      string          `json:"userId"`
	ProjectID   *string         `json:"projectId,omitempty"`
	Type        string          `json:"type"`
	EntityType  string          `json:"entityType"`
	EntityID    string          `json:"entityId"`
	Action      string          `json:"action"`
	OldValue    json.RawMessage `json:"oldValue,omitempty"`
	NewValue    json.RawMessage `json:"newValue,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (p *KafkaPublisher) PublishActivity(_ context.Context, a dom.Activity) error {
	payload, err := json.Marshal(activityEvent{
		ID:          a.ID,
		WorkspaceID: a.WorkspaceID,
		UserID:      a.UserID,
		ProjectID:   a.ProjectID,
		Type:        string(a.Type),
		EntityType:  a.EntityType,
		EntityID:    a.EntityID,
		Action:      a.Action,
		OldValue:    a.OldValue,
		NewValue:    a.NewValue,
		CreatedAt:   a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(a.WorkspaceID),
		Value: payload,
		Time:  a.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity." + string(a.Type))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return io.ErrClosedPipe
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close flushes queued activities and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
	return p.writer.Close()
}

// Nop discards everything. It is used when no brokers are configured.
type Nop struct{}

func (Nop) PublishActivity(context.Context, dom.Activity) error { return nil }
func (Nop) Close() error { return nil }
