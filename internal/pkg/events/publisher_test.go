package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-api/internal/config"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)

	err := p.Publish(context.Background(), Event{Type: PaymentPaid, OrderID: 17, Data: map[string]int64{"paymobOrderId": 900}})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "17", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, PaymentPaid, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, PaymentPaid, decoded.Type)
	assert.Equal(t, uint(17), decoded.OrderID)
	assert.False(t, decoded.OccurredAt.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWriteError(t *testing.T) {
	p := NewKafkaPublisher(&recordingWriter{err: errors.New("broker down")})
	err := p.Publish(context.Background(), Event{Type: OrderCreated, OrderID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.created")
}

func TestNewWithoutBrokersIsNop(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	p := New(&config.Config{}, log)
	_, ok := p.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: OrderCreated}))
}
