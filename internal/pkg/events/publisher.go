// internal/pkg/events/publisher.go

// Package events publishes order and payment lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
)

// Event types
const (
	OrderCreated     = "order.created"
	PaymentInitiated = "payment.initiated"
	PaymentFailed    = "payment.failed"
	PaymentPaid      = "payment.paid"
	PaymentDeclined  = "payment.declined"
)

var (
	publishedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Total number of domain events handed to the broker",
		},
		[]string{"type"},
	)

	publishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_event_publish_errors_total",
			Help: "Total number of domain events the broker did not accept",
		},
	)
)

// Event is a domain event keyed by the local order id
type Event struct {
	Type       string      `json:"type"`
	OrderID    uint        `json:"orderId"`
	UserID     uint        `json:"userId,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Data       interface{} `json:"data,omitempty"`
}

// Publisher hands events to a broker
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New returns a Kafka publisher when brokers are configured and a no-op
// publisher otherwise
func New(cfg *config.Config, logger *logrus.Logger) Publisher {
	if !cfg.EventsEnabled() {
		logger.Info("No Kafka brokers configured, domain events disabled")
		return NopPublisher{}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				publishErrors.Add(float64(len(messages)))
				logger.WithError(err).WithField("count", len(messages)).Error("Failed to publish events to Kafka")
			}
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Errorf(msg, args...)
		}),
	}

	logger.WithFields(logrus.Fields{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.Topic,
	}).Info("Kafka event publisher initialized")

	return NewKafkaPublisher(writer)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by order id so all
// events of one order land on the same partition
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher wraps a kafka writer
func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish encodes and writes an event
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		publishErrors.Inc()
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	publishedEvents.WithLabelValues(event.Type).Inc()
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
