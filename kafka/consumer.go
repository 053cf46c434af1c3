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

	"github.com/tair/inventory-engine/internal/idempotency"
	"github.com/tair/inventory-engine/internal/inventory/usecase/command"
	"github.com/tair/inventory-engine/internal/inventory/usecase/saga"
	"github.com/tair/inventory-engine/pkg/logger"
)

const processedEventTTL = 24 * time.Hour

// Consumer consumes order integration events and drives the reservation
// engine: order.placed reserves, payment.confirmed commits, order.cancelled
// and payment.failed release
type Consumer struct {
	consumer     sarama.ConsumerGroup
	brokers      []string
	groupID      string
	topics       []string
	coordinator  *saga.Coordinator
	commit       *command.CommitReservationHandler
	release      *command.ReleaseReservationHandler
	processed    idempotency.Store
	allOrNothing bool
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(
	brokers []string,
	groupID string,
	coordinator *saga.Coordinator,
	commit *command.CommitReservationHandler,
	release *command.ReleaseReservationHandler,
	processed idempotency.Store,
	allOrNothing bool,
) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("group_id", groupID).
		Str("topic", TopicOrderEvents).
		Bool("all_or_nothing", allOrNothing).
		Msg("Kafka consumer initialized")

	return &Consumer{
		consumer:     consumer,
		brokers:      brokers,
		groupID:      groupID,
		topics:       []string{TopicOrderEvents},
		coordinator:  coordinator,
		commit:       commit,
		release:      release,
		processed:    processed,
		allOrNothing: allOrNothing,
	}, nil
}

// Start starts consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{consumer: c}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Logger.Info().Msg("Consumer context cancelled, stopping...")
				return
			default:
				if err := c.consumer.Consume(ctx, c.topics, handler); err != nil {
					logger.Logger.Error().
						Err(err).
						Msg("Error from consumer")
				}
			}
		}
	}()

	go func() {
		for err := range c.consumer.Errors() {
			logger.Logger.Error().
				Err(err).
				Msg("Consumer error")
		}
	}()

	logger.Logger.Info().
		Strs("topics", c.topics).
		Str("group_id", c.groupID).
		Msg("Kafka consumer started")

	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	if c.consumer != nil {
		return c.consumer.Close()
	}
	return nil
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.handleMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *consumerGroupHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	// Extract trace context from Kafka headers
	carrier := propagation.MapCarrier{}
	eventType := ""
	eventID := ""
	for _, header := range message.Headers {
		key := string(header.Key)
		switch key {
		case "traceparent", "tracestate":
			carrier[key] = string(header.Value)
		case "event_type":
			eventType = string(header.Value)
		case "event_id":
			eventID = string(header.Value)
		}
	}
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	tracer := otel.Tracer("kafka-consumer")
	ctx, span := tracer.Start(ctx, "kafka.consume.order_event",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.source", message.Topic),
			attribute.String("messaging.source_kind", "topic"),
			attribute.Int("messaging.kafka.partition", int(message.Partition)),
			attribute.Int64("messaging.kafka.offset", message.Offset),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	if eventType == "" {
		span.SetStatus(codes.Error, "Message without event_type header")
		logger.Logger.Warn().Msg("Message without event_type header")
		return
	}

	// Delivery is at-least-once; skip events already handled. The command
	// handlers are idempotent anyway, this saves the aggregate round trips.
	if eventID != "" {
		fresh, err := h.consumer.processed.MarkProcessed(ctx, eventID, processedEventTTL)
		if err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("event_id", eventID).
				Msg("Idempotency check failed, processing anyway")
		} else if !fresh {
			span.SetAttributes(attribute.Bool("event.duplicate", true))
			logger.Debug(ctx).
				Str("event_id", eventID).
				Str("event_type", eventType).
				Msg("Duplicate event skipped")
			return
		}
	}

	var err error
	switch eventType {
	case EventTypeOrderPlaced:
		err = h.handleOrderPlaced(ctx, message.Value)
	case EventTypePaymentConfirmed:
		err = h.handlePaymentConfirmed(ctx, message.Value)
	case EventTypeOrderCancelled, EventTypePaymentFailed:
		err = h.handleOrderAborted(ctx, message.Value)
	default:
		span.SetStatus(codes.Error, "Unknown event type")
		logger.Logger.Warn().
			Str("event_type", eventType).
			Msg("Unknown event type")
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to handle event")
		logger.Error(ctx).
			Err(err).
			Str("event_type", eventType).
			Str("event_id", eventID).
			Msg("Failed to handle event")
		return
	}

	span.SetStatus(codes.Ok, "Event handled")
	logger.Info(ctx).
		Str("event_type", eventType).
		Str("event_id", eventID).
		Msg("Event handled")
}

func (h *consumerGroupHandler) handleOrderPlaced(ctx context.Context, payload []byte) error {
	var event OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order placed event: %w", err)
	}

	items := make([]command.LineItem, 0, len(event.Items))
	for _, item := range event.Items {
		items = append(items, command.LineItem{Sku: item.Sku, Quantity: item.Quantity})
	}

	result, err := h.consumer.coordinator.Handle(ctx, command.ReserveStockCommand{
		OrderID:     event.OrderID,
		WarehouseID: event.WarehouseID,
		Items:       items,
	}, h.consumer.allOrNothing)
	if err != nil {
		return err
	}

	logger.Info(ctx).
		Str("order_id", event.OrderID).
		Int("skus", len(result.Outcomes)).
		Bool("all_confirmed", result.AllConfirmed).
		Bool("compensated", result.Compensated).
		Msg("Order reservation processed")
	return nil
}

func (h *consumerGroupHandler) handlePaymentConfirmed(ctx context.Context, payload []byte) error {
	var event PaymentConfirmedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal payment confirmed event: %w", err)
	}

	for _, ref := range event.Reservations {
		_, err := h.consumer.commit.Handle(ctx, command.CommitReservationCommand{
			AggregateID:   ref.AggregateID,
			ReservationID: ref.ReservationID,
		})
		if err != nil {
			return fmt.Errorf("failed to commit reservation %s: %w", ref.ReservationID, err)
		}
	}
	return nil
}

func (h *consumerGroupHandler) handleOrderAborted(ctx context.Context, payload []byte) error {
	var event OrderAbortedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order aborted event: %w", err)
	}

	reason := event.Reason
	if reason == "" {
		reason = event.EventType
	}
	for _, reservationID := range event.ReservationIDs {
		_, err := h.consumer.release.Handle(ctx, command.ReleaseReservationCommand{
			ReservationID: reservationID,
			Reason:        reason,
		})
		if err != nil {
			return fmt.Errorf("failed to release reservation %s: %w", reservationID, err)
		}
	}
	return nil
}
