package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DefaultKafkaBufferSize is the number of messages queued before events are dropped
const DefaultKafkaBufferSize = 256

// ErrPublisherClosed is returned when an event arrives after Close
var ErrPublisherClosed = errors.New("kafka publisher is closed")

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards domain events to a Kafka topic. It subscribes to the
// in-memory bus as a wildcard handler; messages are queued and written by a
// background goroutine so request handling never waits on the broker.
// Messages are keyed by aggregate ID so events of one aggregate stay ordered.
type KafkaPublisher struct {
	writer  messageWriter
	inbox   chan kafka.Message
	done    chan struct{}
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher writing to cfg.Topic on cfg.Brokers
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(writer, cfg.BufferSize, logger)
}

func newKafkaPublisher(writer messageWriter, bufferSize int, logger *zap.Logger) *KafkaPublisher {
	if bufferSize <= 0 {
		bufferSize = DefaultKafkaBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer:  writer,
		inbox:   make(chan kafka.Message, bufferSize),
		done:    make(chan struct{}),
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// Start launches the writer loop. It runs until Close drains the queue.
func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.done)
		for msg := range p.inbox {
			p.write(msg)
		}
		if err := p.writer.Close(); err != nil {
			p.logger.Error("failed to close kafka writer", zap.Error(err))
		}
	}()
}

// Handle queues the event for delivery. A full queue drops the event with a warning.
func (p *KafkaPublisher) Handle(_ context.Context, event shared.DomainEvent) error {
	envelope, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	value, err := envelope.Marshal()
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.AggregateID().String()),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
			{Key: "aggregate_type", Value: []byte(event.AggregateType())},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	default:
		p.logger.Warn("kafka queue full, dropping event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
		return nil
	}
}

// EventTypes returns nil so the publisher receives every event
func (p *KafkaPublisher) EventTypes() []string {
	return nil
}

// Close stops accepting events and waits until queued messages are written
// or ctx is done
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *KafkaPublisher) write(msg kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to write event to kafka",
			zap.String("key", string(msg.Key)),
			zap.Error(err),
		)
	}
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)
