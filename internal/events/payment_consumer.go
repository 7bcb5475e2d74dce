package events

import (
	"context"
	"strings"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/kafka"
)

// PaymentEventHandler is implemented by the application layer to advance
// reservations when payment outcomes arrive.
type PaymentEventHandler interface {
	HandlePaymentConfirmed(ctx context.Context, tenantID, reservationID uuid.UUID, amountCents int64, providerTransactionID string) error
	HandlePaymentFailed(ctx context.Context, tenantID, reservationID uuid.UUID, reason string) error
}

// PaymentEventConsumer listens to payment events and advances reservations.
type PaymentEventConsumer struct {
	consumer       *kafka.Consumer
	bookingService PaymentEventHandler
	logger         *zap.Logger
}

// NewPaymentEventConsumer creates a new consumer for payment events.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	topic string,
	bookingService PaymentEventHandler,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, topic, logger)
	return &PaymentEventConsumer{
		consumer:       consumer,
		bookingService: bookingService,
		logger:         logger,
	}
}

// Start begins consuming payment events. It blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received payment event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, PaymentConfirmed):
		return c.handlePaymentConfirmed(ctx, cloudEvent)

	case strings.EqualFold(cloudEvent.Type, PaymentFailed):
		return c.handlePaymentFailed(ctx, cloudEvent)

	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// handlePaymentConfirmed processes a PaymentConfirmedEvent.
func (c *PaymentEventConsumer) handlePaymentConfirmed(ctx context.Context, ce kafka.CloudEvent) error {
	var event PaymentConfirmedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse PaymentConfirmedEvent data", zap.Error(err))
		return err
	}

	return c.bookingService.HandlePaymentConfirmed(ctx, event.TenantID, event.ReservationID, event.AmountCents, event.ProviderTransactionID)
}

// handlePaymentFailed processes a PaymentFailedEvent.
func (c *PaymentEventConsumer) handlePaymentFailed(ctx context.Context, ce kafka.CloudEvent) error {
	var event PaymentFailedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse PaymentFailedEvent data", zap.Error(err))
		return err
	}

	return c.bookingService.HandlePaymentFailed(ctx, event.TenantID, event.ReservationID, event.Reason)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}
