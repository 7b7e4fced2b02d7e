package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/internal/events"
)

// RatingService records post-completion ratings. Each booking has two
// independent slots, one per role; a submitted rating is immutable.
type RatingService struct {
	repo     bookingDomain.BookingRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewRatingService creates a new RatingService.
func NewRatingService(repo bookingDomain.BookingRepository, producer EventPublisher, logger *zap.Logger) *RatingService {
	return &RatingService{repo: repo, producer: producer, logger: logger}
}

// RateBooking writes the actor's rating into the slot for their role. The
// booking must be completed, the actor must be a participant, and the slot
// must be empty. The final write is a conditional update so a concurrent
// duplicate submission loses cleanly.
func (s *RatingService) RateBooking(ctx context.Context, bookingID, actorID uuid.UUID, score int, review string) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}

	rating, err := bookingDomain.NewRating(score, review)
	if err != nil {
		return err
	}

	// The aggregate enforces role, completion, and slot immutability; the
	// conditional update in SetRating re-checks them against the stored row.
	if err := bk.AttachRating(actorID, rating); err != nil {
		return err
	}
	role := bk.ParticipantRole(actorID)

	if err := s.repo.SetRating(ctx, bookingID, role, rating); err != nil {
		return err
	}

	evt := events.BookingRatedEvent{
		BookingID:  bookingID,
		RatedBy:    actorID,
		Role:       string(role),
		Rating:     score,
		OccurredAt: time.Now().UTC(),
	}
	publishEvent(ctx, s.producer, s.logger, events.BookingRated, bookingID.String(), evt)
	return nil
}
