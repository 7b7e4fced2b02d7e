package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homelink-services/service-bookings/internal/catalog"
	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/internal/events"
	"github.com/homelink-services/service-bookings/pkg/domain"
	"github.com/homelink-services/service-bookings/pkg/kafka"
)

const eventSource = "service-bookings"

// EventPublisher is the slice of the Kafka producer the application layer
// needs. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishKeyed(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating the booking
// lifecycle: creation and role-gated status transitions.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	catalog  catalog.ServiceCatalog
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	cat catalog.ServiceCatalog,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		catalog:  cat,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a pending booking for the customer, snapshotting the
// service's pricing from the catalog so later catalog edits cannot rewrite it.
func (s *BookingService) CreateBooking(ctx context.Context, customerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	preferred, err := bookingDomain.ParseSchedule(req.PreferredDate, req.PreferredTime)
	if err != nil {
		return nil, err
	}

	var alternative *bookingDomain.Schedule
	if req.AlternativeDate != "" || req.AlternativeTime != "" {
		alt, err := bookingDomain.ParseSchedule(req.AlternativeDate, req.AlternativeTime)
		if err != nil {
			return nil, err
		}
		alternative = &alt
	}

	snapshot, err := s.catalog.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !snapshot.IsActive {
		return nil, domain.NewConflictError("service is not currently offered")
	}

	currency := snapshot.Currency
	if currency == "" {
		currency = "USD"
	}

	bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
		CustomerID:               customerID,
		ProfessionalID:           snapshot.ProviderID,
		ServiceID:                req.ServiceID,
		Title:                    req.Title,
		Description:              req.Description,
		Urgency:                  bookingDomain.Urgency(req.Urgency),
		Images:                   req.Images,
		Requirements:             req.Requirements,
		Preferred:                preferred,
		Alternative:              alternative,
		EstimatedDurationMinutes: snapshot.DurationMinutes,
		Location:                 req.Location,
		PricingType:              snapshot.PricingType,
		EstimatedCost:            snapshot.Amount,
		Currency:                 currency,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	evt := events.BookingCreatedEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		ServiceID:      bk.ServiceID(),
		CustomerID:     bk.CustomerID(),
		ProfessionalID: bk.ProfessionalID(),
		Urgency:        string(bk.Urgency()),
		EstimatedCost:  bk.EstimatedCost().String(),
		Currency:       bk.Currency(),
		OccurredAt:     time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// TransitionBooking moves a booking along one edge of the status machine on
// behalf of the actor. The read-check-write runs against a version-conditioned
// update, so a losing concurrent writer gets a conflict instead of silently
// overwriting the winner.
func (s *BookingService) TransitionBooking(ctx context.Context, bookingID, actorID uuid.UUID, req TransitionBookingRequest) (*BookingDTO, error) {
	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	var scheduled *bookingDomain.Schedule
	if req.ScheduledDate != "" || req.ScheduledTime != "" {
		sched, err := bookingDomain.ParseSchedule(req.ScheduledDate, req.ScheduledTime)
		if err != nil {
			return nil, err
		}
		scheduled = &sched
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	fromStatus := bk.Status()

	if err := bk.ApplyTransition(actorID, target, req.Note, scheduled, req.FinalCost); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingStatusChangedEvent{
		BookingID:      bk.ID(),
		BookingNumber:  bk.BookingNumber(),
		CustomerID:     bk.CustomerID(),
		ProfessionalID: bk.ProfessionalID(),
		FromStatus:     string(fromStatus),
		ToStatus:       string(target),
		ChangedBy:      actorID,
		Note:           req.Note,
		OccurredAt:     time.Now().UTC(),
	}
	if fc := bk.FinalCost(); target == bookingDomain.StatusCompleted && fc != nil {
		evt.FinalCost = fc.String()
	}
	s.publishEvent(ctx, eventTypeForStatus(target), bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking for one of its participants.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanView(actorID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingAsAdmin returns a booking without the participant check. Callers
// must have enforced the admin role at the edge.
func (s *BookingService) GetBookingAsAdmin(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}
	return paginate(bookings, total, page, limit), nil
}

// GetProfessionalBookings retrieves paginated bookings for a professional.
func (s *BookingService) GetProfessionalBookings(ctx context.Context, professionalID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByProfessionalID(ctx, professionalID, page, limit)
	if err != nil {
		return nil, err
	}
	return paginate(bookings, total, page, limit), nil
}

// RecordPaymentStatus stores the payment collaborator's status for a booking.
func (s *BookingService) RecordPaymentStatus(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) error {
	return s.repo.SetPaymentStatus(ctx, bookingID, status)
}

// OpenDispute moves a booking into the disputed status. The transition table
// has no edge into disputed; this is the single out-of-band path, driven by
// the payment collaborator's dispute events.
func (s *BookingService) OpenDispute(ctx context.Context, bookingID, openedBy uuid.UUID, reason string) error {
	previous, err := s.repo.MarkDisputed(ctx, bookingID, openedBy, reason)
	if err != nil {
		return err
	}
	if previous == bookingDomain.StatusDisputed {
		return nil // redelivered dispute event, already handled
	}

	evt := events.BookingStatusChangedEvent{
		BookingID:  bookingID,
		FromStatus: string(previous),
		ToStatus:   string(bookingDomain.StatusDisputed),
		ChangedBy:  openedBy,
		Note:       reason,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingDisputed, bookingID.String(), evt)
	return nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

func paginate(bookings []*bookingDomain.Booking, total int64, page, limit int) *domain.PaginatedResult[BookingDTO] {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result
}

func eventTypeForStatus(status bookingDomain.BookingStatus) string {
	switch status {
	case bookingDomain.StatusAccepted:
		return events.BookingAccepted
	case bookingDomain.StatusRejected:
		return events.BookingRejected
	case bookingDomain.StatusConfirmed:
		return events.BookingConfirmed
	case bookingDomain.StatusInProgress:
		return events.BookingStarted
	case bookingDomain.StatusCompleted:
		return events.BookingCompleted
	case bookingDomain.StatusCancelled:
		return events.BookingCancelled
	default:
		return events.BookingDisputed
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	publishEvent(ctx, s.producer, s.logger, eventType, key, data)
}

// publishEvent is fire-and-forget notification dispatch: failures are logged,
// never propagated to the caller.
func publishEvent(ctx context.Context, producer EventPublisher, logger *zap.Logger, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishKeyed(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
