package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// TracingRepository wraps a Repository with tracing
type TracingRepository struct {
	inner Repository
}

// NewTracingRepository creates a repository decorator that records spans
func NewTracingRepository(inner Repository) *TracingRepository {
	return &TracingRepository{inner: inner}
}

func (r *TracingRepository) Load(ctx context.Context, aggregateID string) (*domain.StockItem, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.Load",
		trace.WithAttributes(
			attribute.String("stock.aggregate_id", aggregateID),
		),
	)
	defer span.End()

	item, version, err := r.inner.Load(ctx, aggregateID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(
		attribute.String("stock.sku", item.Sku),
		attribute.String("stock.warehouse_id", item.WarehouseID),
		attribute.Int64("stock.available", item.Available),
		attribute.Int64("stock.version", version),
	)
	return item, version, nil
}

func (r *TracingRepository) Save(ctx context.Context, aggregateID string, expectedVersion int64, events []domain.Event) error {
	ctx, span := tracer.Start(ctx, "repository.Save",
		trace.WithAttributes(
			attribute.String("stock.aggregate_id", aggregateID),
			attribute.Int64("stock.expected_version", expectedVersion),
			attribute.Int("stock.event_count", len(events)),
		),
	)
	defer span.End()

	if err := r.inner.Save(ctx, aggregateID, expectedVersion, events); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *TracingRepository) FindByReservation(ctx context.Context, reservationID string) (*domain.StockItem, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.FindByReservation",
		trace.WithAttributes(
			attribute.String("stock.reservation_id", reservationID),
		),
	)
	defer span.End()

	item, version, err := r.inner.FindByReservation(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(
		attribute.String("stock.aggregate_id", item.ID),
		attribute.Int64("stock.version", version),
	)
	return item, version, nil
}
