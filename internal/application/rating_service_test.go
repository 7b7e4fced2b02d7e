package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/internal/events"
	"github.com/homelink-services/service-bookings/pkg/domain"
)

func newTestRatingService(repo *fakeBookingRepo) (*RatingService, *fakePublisher) {
	publisher := &fakePublisher{}
	return NewRatingService(repo, publisher, zap.NewNop()), publisher
}

func TestRatingService_RateBooking(t *testing.T) {
	completed := func(t *testing.T, repo *fakeBookingRepo) *bookingDomain.Booking {
		t.Helper()
		bk := seedBooking(repo, uuid.New(), uuid.New())
		advanceTo(repo, bk, bookingDomain.StatusCompleted)
		return bk
	}

	t.Run("both slots fill independently", func(t *testing.T) {
		repo := newFakeBookingRepo()
		svc, publisher := newTestRatingService(repo)
		bk := completed(t, repo)
		ctx := context.Background()

		require.NoError(t, svc.RateBooking(ctx, bk.ID(), bk.CustomerID(), 5, "spotless"))
		require.NoError(t, svc.RateBooking(ctx, bk.ID(), bk.ProfessionalID(), 4, "easy access"))

		stored, err := repo.FindByID(ctx, bk.ID())
		require.NoError(t, err)
		require.NotNil(t, stored.CustomerRating())
		require.NotNil(t, stored.ProfessionalRating())
		assert.Equal(t, 5, stored.CustomerRating().Rating)
		assert.Equal(t, 4, stored.ProfessionalRating().Rating)

		assert.Equal(t, []string{events.BookingRated, events.BookingRated}, publisher.types())
	})

	t.Run("second submission from the same party conflicts", func(t *testing.T) {
		repo := newFakeBookingRepo()
		svc, publisher := newTestRatingService(repo)
		bk := completed(t, repo)
		ctx := context.Background()

		require.NoError(t, svc.RateBooking(ctx, bk.ID(), bk.CustomerID(), 5, ""))

		err := svc.RateBooking(ctx, bk.ID(), bk.CustomerID(), 1, "regrets")
		require.Error(t, err)
		assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

		stored, err := repo.FindByID(ctx, bk.ID())
		require.NoError(t, err)
		assert.Equal(t, 5, stored.CustomerRating().Rating, "first rating is immutable")
		assert.Equal(t, []string{events.BookingRated}, publisher.types())
	})

	t.Run("only completed bookings are rateable", func(t *testing.T) {
		repo := newFakeBookingRepo()
		svc, _ := newTestRatingService(repo)
		bk := seedBooking(repo, uuid.New(), uuid.New())
		advanceTo(repo, bk, bookingDomain.StatusInProgress)

		err := svc.RateBooking(context.Background(), bk.ID(), bk.CustomerID(), 4, "")
		require.Error(t, err)
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("stranger cannot rate", func(t *testing.T) {
		repo := newFakeBookingRepo()
		svc, _ := newTestRatingService(repo)
		bk := completed(t, repo)

		err := svc.RateBooking(context.Background(), bk.ID(), uuid.New(), 4, "")
		require.Error(t, err)
		assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
	})

	t.Run("score out of range", func(t *testing.T) {
		repo := newFakeBookingRepo()
		svc, _ := newTestRatingService(repo)
		bk := completed(t, repo)

		err := svc.RateBooking(context.Background(), bk.ID(), bk.CustomerID(), 6, "")
		require.Error(t, err)
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	})
}
