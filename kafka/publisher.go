package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/pkg/logger"
)

// Publisher wraps a Kafka producer for reservation outcome events.
// It implements port.OutcomePublisher.
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishOutcome publishes a reservation outcome event with tracing
func (p *Publisher) PublishOutcome(ctx context.Context, outcome domain.ReservationOutcome) error {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish.reservation_outcome",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", TopicReservationOutcomes),
			attribute.String("messaging.destination_kind", "topic"),
			attribute.String("event.type", outcome.Kind),
			attribute.String("order.id", outcome.OrderID),
			attribute.String("stock.sku", outcome.Sku),
			attribute.Int64("stock.quantity", outcome.Quantity),
		),
	)
	defer span.End()

	eventID := fmt.Sprintf("evt_%d", time.Now().UnixNano())
	span.SetAttributes(attribute.String("event.id", eventID))

	payload, err := json.Marshal(outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal outcome")
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{
			Key:   []byte("event_type"),
			Value: []byte(outcome.Kind),
		},
		{
			Key:   []byte("event_id"),
			Value: []byte(eventID),
		},
	}
	for key, value := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(key),
			Value: []byte(value),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   TopicReservationOutcomes,
		Key:     sarama.StringEncoder(outcome.AggregateID),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", TopicReservationOutcomes).
			Str("kind", outcome.Kind).
			Str("order_id", outcome.OrderID).
			Msg("Failed to publish reservation outcome")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Outcome published")

	logger.Logger.Info().
		Str("event_id", eventID).
		Str("kind", outcome.Kind).
		Str("topic", TopicReservationOutcomes).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("order_id", outcome.OrderID).
		Str("sku", outcome.Sku).
		Int64("quantity", outcome.Quantity).
		Msg("Reservation outcome published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
