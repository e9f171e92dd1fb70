package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
	block    chan struct{}
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) snapshot() ([]kafka.Message, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...), w.closed
}

func newProductEvent(t *testing.T) *catalog.ProductCreatedEvent {
	t.Helper()
	product, err := catalog.NewProduct(catalog.ProductDetails{
		Name:       "Desk Lamp",
		Price:      valueobject.NewMoney(decimal.RequireFromString("24.50")),
		CategoryID: uuid.New(),
		Quantity:   12,
		IsActive:   true,
	})
	require.NoError(t, err)
	return catalog.NewProductCreatedEvent(product)
}

func closeWithin(t *testing.T, p *KafkaPublisher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Close(ctx))
}

func TestKafkaPublisher_WritesEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newKafkaPublisher(writer, 4, zap.NewNop())
	publisher.Start()

	event := newProductEvent(t)
	require.NoError(t, publisher.Handle(context.Background(), event))
	closeWithin(t, publisher)

	messages, closed := writer.snapshot()
	assert.True(t, closed)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, event.ProductID.String(), string(msg.Key))
	assert.Equal(t, kafka.Header{Key: "event_type", Value: []byte(catalog.EventTypeProductCreated)}, msg.Headers[0])

	var envelope Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	assert.Equal(t, event.EventID(), envelope.ID)
	assert.Equal(t, catalog.EventTypeProductCreated, envelope.Type)
	assert.Equal(t, catalog.AggregateTypeProduct, envelope.AggregateType)

	var payload catalog.ProductCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "Desk Lamp", payload.Name)
	assert.Equal(t, event.SKU, payload.SKU)
	assert.Equal(t, "24.50", payload.Price.String())
}

func TestKafkaPublisher_SubscribesToEverything(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newKafkaPublisher(writer, 4, nil)
	publisher.Start()

	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(publisher)
	assert.Nil(t, publisher.EventTypes())

	require.NoError(t, bus.Publish(context.Background(), newProductEvent(t), newTestEvent("Other")))
	closeWithin(t, publisher)

	messages, _ := writer.snapshot()
	assert.Len(t, messages, 2)
}

func TestKafkaPublisher_DropsWhenQueueFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	writer := &fakeWriter{block: make(chan struct{})}
	publisher := newKafkaPublisher(writer, 1, zap.New(core))

	// Not started: the single slot fills and the next event is dropped
	require.NoError(t, publisher.Handle(context.Background(), newProductEvent(t)))
	require.NoError(t, publisher.Handle(context.Background(), newProductEvent(t)))

	assert.Equal(t, 1, logs.FilterMessage("kafka queue full, dropping event").Len())

	close(writer.block)
	publisher.Start()
	closeWithin(t, publisher)

	messages, _ := writer.snapshot()
	assert.Len(t, messages, 1)
}

func TestKafkaPublisher_LogsWriteErrors(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := newKafkaPublisher(writer, 4, zap.New(core))
	publisher.Start()

	require.NoError(t, publisher.Handle(context.Background(), newProductEvent(t)))
	closeWithin(t, publisher)

	assert.Equal(t, 1, logs.FilterMessage("failed to write event to kafka").Len())
}

func TestKafkaPublisher_RejectsAfterClose(t *testing.T) {
	publisher := newKafkaPublisher(&fakeWriter{}, 0, nil)
	publisher.Start()
	closeWithin(t, publisher)
	closeWithin(t, publisher)

	err := publisher.Handle(context.Background(), newProductEvent(t))
	assert.ErrorIs(t, err, ErrPublisherClosed)
	assert.Equal(t, DefaultKafkaBufferSize, cap(publisher.inbox))
}

func TestNewEnvelope_SchemaVersion(t *testing.T) {
	envelope, err := NewEnvelope(newTestEvent("TestEvent"))
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.SchemaVersion)
	assert.Equal(t, "TestEvent", envelope.Type)
	assert.Equal(t, time.UTC, envelope.OccurredAt.Location())
}
