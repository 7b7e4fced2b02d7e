package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/homelink-services/service-bookings/internal/application"
	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/internal/events"
	"github.com/homelink-services/service-bookings/pkg/kafka"
)

// PaymentEventConsumer listens to payment events and records their outcome on
// bookings: captured/refunded update the payment status, disputed moves the
// booking into the disputed state out-of-band.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentCaptured:
		return c.handlePaymentStatus(ctx, cloudEvent, bookingDomain.PaymentPaid)
	case events.PaymentRefunded:
		return c.handlePaymentStatus(ctx, cloudEvent, bookingDomain.PaymentRefunded)
	case events.PaymentDisputed:
		return c.handleDisputeOpened(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentStatus(ctx context.Context, cloudEvent kafka.CloudEvent, status bookingDomain.PaymentStatus) error {
	var evt events.PaymentStatusEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse payment status event data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	if err := c.service.RecordPaymentStatus(ctx, evt.BookingID, status); err != nil {
		c.logger.Error("failed to record payment status",
			zap.String("booking_id", evt.BookingID.String()),
			zap.String("payment_status", string(status)),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("payment status recorded",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_status", string(status)),
	)
	return nil
}

func (c *PaymentEventConsumer) handleDisputeOpened(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.DisputeOpenedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse DisputeOpenedEvent data", zap.Error(err))
		return nil // Don't retry malformed data
	}

	if err := c.service.OpenDispute(ctx, evt.BookingID, evt.OpenedBy, evt.Reason); err != nil {
		c.logger.Error("failed to open dispute on booking",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking moved to disputed",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)
	return nil
}
