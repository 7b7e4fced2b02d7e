package booking

import (
	"context"

	"github.com/google/uuid"
)

// RatingAggregate is the raw material for a professional's public stats.
type RatingAggregate struct {
	Total         int64
	Completed     int64
	AverageRating *float64
}

// BookingRepository defines the persistence contract for booking aggregates.
// Update, AppendMessage, MarkMessagesRead and SetRating must each execute as a
// single atomic store operation so concurrent writers cannot lose updates.
type BookingRepository interface {
	// FindByID retrieves a booking (with status history) by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByNumber retrieves a booking by its human-readable booking number.
	FindByNumber(ctx context.Context, number string) (*Booking, error)

	// FindByCustomerID retrieves a customer's bookings with pagination,
	// newest first.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByProfessionalID retrieves a professional's bookings with
	// pagination, newest first.
	FindByProfessionalID(ctx context.Context, professionalID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking;
	// uncommitted history entries are inserted in the same transaction. A lost
	// version race yields a conflict error.
	Update(ctx context.Context, booking *Booking) error

	// AppendMessage atomically appends one message to the booking's thread
	// and returns it with its assigned sequence.
	AppendMessage(ctx context.Context, msg Message) (Message, error)

	// ListMessages returns the full conversation thread in send order.
	ListMessages(ctx context.Context, bookingID uuid.UUID) ([]Message, error)

	// MarkMessagesRead flags every unread message not sent by the reader.
	// Idempotent.
	MarkMessagesRead(ctx context.Context, bookingID, readerID uuid.UUID) error

	// SetRating fills the rating slot for the given role, failing with a
	// conflict error if the slot is already filled, and with an invalid-state
	// error if the booking is not completed.
	SetRating(ctx context.Context, bookingID uuid.UUID, role Role, rating Rating) error

	// SetPaymentStatus records the payment collaborator's status for a booking.
	SetPaymentStatus(ctx context.Context, bookingID uuid.UUID, status PaymentStatus) error

	// MarkDisputed moves a booking into the disputed status out-of-band and
	// returns the status it held before. Only the dispute-resolution path may
	// call this; the transition table has no edge into disputed. Marking an
	// already-disputed booking is a no-op returning StatusDisputed.
	MarkDisputed(ctx context.Context, bookingID, changedBy uuid.UUID, note string) (BookingStatus, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// CountByStatusForCustomer returns a customer's counts grouped by status.
	CountByStatusForCustomer(ctx context.Context, customerID uuid.UUID) (map[string]int64, error)

	// CountByStatusForProfessional returns a professional's counts grouped by status.
	CountByStatusForProfessional(ctx context.Context, professionalID uuid.UUID) (map[string]int64, error)

	// CountPendingUrgent returns a professional's pending bookings with high
	// or emergency urgency.
	CountPendingUrgent(ctx context.Context, professionalID uuid.UUID) (int64, error)

	// RecentForCustomer returns the customer's most recent bookings, newest
	// first.
	RecentForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*Booking, error)

	// RatingStatsForProfessional returns totals and the average customer
	// rating across the professional's bookings.
	RatingStatsForProfessional(ctx context.Context, professionalID uuid.UUID) (RatingAggregate, error)
}
