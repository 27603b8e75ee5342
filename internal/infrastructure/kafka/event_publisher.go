package kafka

import (
	"context"
	"fmt"

	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/pkg/cloudevents"
)

// EventProducer is satisfied by *kafka.InstrumentedProducer
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event *cloudevents.WMSCloudEvent) error
}

// EventPublisher implements domain event publishing using Kafka
type EventPublisher struct {
	producer     EventProducer
	eventFactory *cloudevents.EventFactory
	topic        string
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(
	producer EventProducer,
	eventFactory *cloudevents.EventFactory,
	topic string,
) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
		topic:        topic,
	}
}

// Publish publishes a single domain event to Kafka
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	var scanID, warehouseID string
	switch e := event.(type) {
	case *domain.ScanStartedEvent:
		scanID, warehouseID = e.ScanID, e.WarehouseID
	case *domain.ScanCompletedEvent:
		scanID, warehouseID = e.ScanID, e.WarehouseID
	case *domain.ScanCancelledEvent:
		scanID, warehouseID = e.ScanID, e.WarehouseID
	}

	subject := "dropzone"
	if scanID != "" {
		subject = "dropzone/scan/" + scanID
	}

	ce := p.eventFactory.CreateEvent(ctx, event.EventType(), subject, event).
		WithScan(scanID).
		WithWarehouse(warehouseID)

	if err := p.producer.PublishEvent(ctx, p.topic, ce); err != nil {
		return fmt.Errorf("failed to publish event to kafka: %w", err)
	}

	return nil
}

// GetTopic returns the topic this publisher publishes to
func (p *EventPublisher) GetTopic() string {
	return p.topic
}
