package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/internal/events"
	"github.com/homelink-services/service-bookings/pkg/domain"
)

// MessagingService manages the append-only conversation thread embedded in a
// booking.
type MessagingService struct {
	repo     bookingDomain.BookingRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewMessagingService creates a new MessagingService.
func NewMessagingService(repo bookingDomain.BookingRepository, producer EventPublisher, logger *zap.Logger) *MessagingService {
	return &MessagingService{repo: repo, producer: producer, logger: logger}
}

// PostMessage appends a message to the booking's thread and returns the full
// thread. Only the booking's participants may post.
func (s *MessagingService) PostMessage(ctx context.Context, bookingID, actorID uuid.UUID, body string) ([]MessageDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanMessage(actorID) {
		return nil, domain.NewForbiddenError("actor is not a party to this booking")
	}

	msg, err := bookingDomain.NewMessage(bookingID, actorID, body)
	if err != nil {
		return nil, err
	}

	appended, err := s.repo.AppendMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	evt := events.MessagePostedEvent{
		BookingID:  bookingID,
		MessageID:  appended.ID,
		SenderID:   actorID,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.BookingMessagePosted, bookingID.String(), evt)

	thread, err := s.repo.ListMessages(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return toMessageDTOs(thread), nil
}

// ListMessages returns the booking's conversation thread for a participant.
func (s *MessagingService) ListMessages(ctx context.Context, bookingID, actorID uuid.UUID) ([]MessageDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanView(actorID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	thread, err := s.repo.ListMessages(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return toMessageDTOs(thread), nil
}

// MarkMessagesRead flags every message sent to the actor as read. Idempotent;
// the actor's own messages are never touched.
func (s *MessagingService) MarkMessagesRead(ctx context.Context, bookingID, actorID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !bk.CanMessage(actorID) {
		return domain.NewForbiddenError("actor is not a party to this booking")
	}
	return s.repo.MarkMessagesRead(ctx, bookingID, actorID)
}
