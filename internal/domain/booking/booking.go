package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homelink-services/service-bookings/pkg/domain"
)

const (
	bookingNumberChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxDescriptionLength = 1000
)

// Booking is the aggregate root for a service engagement between a customer
// and a professional. All mutations flow through its behavior methods so the
// lifecycle invariants hold regardless of the caller.
type Booking struct {
	id             uuid.UUID
	bookingNumber  string
	serviceID      uuid.UUID
	customerID     uuid.UUID
	professionalID uuid.UUID

	title        string
	description  string
	urgency      Urgency
	images       []string
	requirements []string

	preferred                Schedule
	alternative              *Schedule
	scheduled                *Schedule
	estimatedDurationMinutes int

	location Address

	pricingType   PricingType
	estimatedCost decimal.Decimal
	finalCost     *decimal.Decimal
	currency      string

	status             BookingStatus
	history            []StatusHistoryEntry
	uncommittedHistory []StatusHistoryEntry

	workCompletedAt    *time.Time
	paymentStatus      PaymentStatus
	customerRating     *Rating
	professionalRating *Rating

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBookingParams holds the validated-at-construction inputs for a booking.
type NewBookingParams struct {
	CustomerID               uuid.UUID
	ProfessionalID           uuid.UUID
	ServiceID                uuid.UUID
	Title                    string
	Description              string
	Urgency                  Urgency
	Images                   []string
	Requirements             []string
	Preferred                Schedule
	Alternative              *Schedule
	EstimatedDurationMinutes int
	Location                 Address
	PricingType              PricingType
	EstimatedCost            decimal.Decimal
	Currency                 string
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending and an empty
// status history. The preferred date/time must not already have passed.
func NewBooking(p NewBookingParams) (*Booking, error) {
	if p.CustomerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if p.ProfessionalID == uuid.Nil {
		return nil, domain.NewValidationError("professional ID is required")
	}
	if p.ServiceID == uuid.Nil {
		return nil, domain.NewValidationError("service ID is required")
	}
	if p.Title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(p.Description) > maxDescriptionLength {
		return nil, domain.NewValidationError("description must be at most 1000 characters")
	}
	urgency := p.Urgency
	if urgency == "" {
		urgency = UrgencyMedium
	}
	if !urgency.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid urgency: %s", p.Urgency))
	}
	if err := p.Location.Validate(); err != nil {
		return nil, err
	}
	if p.Preferred.IsPast(time.Now()) {
		return nil, domain.NewValidationError("preferred date and time must not be in the past")
	}
	if !p.PricingType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid pricing type: %s", p.PricingType))
	}
	if p.EstimatedCost.IsNegative() {
		return nil, domain.NewValidationError("estimated cost must not be negative")
	}
	if p.Currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                       uuid.New(),
		bookingNumber:            bookingNumber,
		serviceID:                p.ServiceID,
		customerID:               p.CustomerID,
		professionalID:           p.ProfessionalID,
		title:                    p.Title,
		description:              p.Description,
		urgency:                  urgency,
		images:                   p.Images,
		requirements:             p.Requirements,
		preferred:                p.Preferred,
		alternative:              p.Alternative,
		estimatedDurationMinutes: p.EstimatedDurationMinutes,
		location:                 p.Location,
		pricingType:              p.PricingType,
		estimatedCost:            p.EstimatedCost,
		currency:                 p.Currency,
		status:                   StatusPending,
		paymentStatus:            PaymentPending,
		version:                  1,
		createdAt:                now,
		updatedAt:                now,
	}, nil
}

// BookingState carries every persisted field needed to rebuild an aggregate.
type BookingState struct {
	ID                       uuid.UUID
	BookingNumber            string
	ServiceID                uuid.UUID
	CustomerID               uuid.UUID
	ProfessionalID           uuid.UUID
	Title                    string
	Description              string
	Urgency                  Urgency
	Images                   []string
	Requirements             []string
	Preferred                Schedule
	Alternative              *Schedule
	Scheduled                *Schedule
	EstimatedDurationMinutes int
	Location                 Address
	PricingType              PricingType
	EstimatedCost            decimal.Decimal
	FinalCost                *decimal.Decimal
	Currency                 string
	Status                   BookingStatus
	History                  []StatusHistoryEntry
	WorkCompletedAt          *time.Time
	PaymentStatus            PaymentStatus
	CustomerRating           *Rating
	ProfessionalRating       *Rating
	Version                  int64
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(s BookingState) *Booking {
	return &Booking{
		id:                       s.ID,
		bookingNumber:            s.BookingNumber,
		serviceID:                s.ServiceID,
		customerID:               s.CustomerID,
		professionalID:           s.ProfessionalID,
		title:                    s.Title,
		description:              s.Description,
		urgency:                  s.Urgency,
		images:                   s.Images,
		requirements:             s.Requirements,
		preferred:                s.Preferred,
		alternative:              s.Alternative,
		scheduled:                s.Scheduled,
		estimatedDurationMinutes: s.EstimatedDurationMinutes,
		location:                 s.Location,
		pricingType:              s.PricingType,
		estimatedCost:            s.EstimatedCost,
		finalCost:                s.FinalCost,
		currency:                 s.Currency,
		status:                   s.Status,
		history:                  s.History,
		workCompletedAt:          s.WorkCompletedAt,
		paymentStatus:            s.PaymentStatus,
		customerRating:           s.CustomerRating,
		professionalRating:       s.ProfessionalRating,
		version:                  s.Version,
		createdAt:                s.CreatedAt,
		updatedAt:                s.UpdatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// ServiceID returns the catalog service reference.
func (b *Booking) ServiceID() uuid.UUID { return b.serviceID }

// CustomerID returns the requesting customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// ProfessionalID returns the assigned professional's user ID.
func (b *Booking) ProfessionalID() uuid.UUID { return b.professionalID }

// Title returns the booking title.
func (b *Booking) Title() string { return b.title }

// Description returns the booking description.
func (b *Booking) Description() string { return b.description }

// Urgency returns the priority hint.
func (b *Booking) Urgency() Urgency { return b.urgency }

// Images returns attached image URLs.
func (b *Booking) Images() []string { return b.images }

// Requirements returns the customer's requirement notes.
func (b *Booking) Requirements() []string { return b.requirements }

// Preferred returns the customer's preferred schedule.
func (b *Booking) Preferred() Schedule { return b.preferred }

// Alternative returns the customer's fallback schedule, or nil.
func (b *Booking) Alternative() *Schedule { return b.alternative }

// Scheduled returns the schedule fixed on acceptance, or nil.
func (b *Booking) Scheduled() *Schedule { return b.scheduled }

// EstimatedDurationMinutes returns the catalog's duration estimate.
func (b *Booking) EstimatedDurationMinutes() int { return b.estimatedDurationMinutes }

// Location returns the service address.
func (b *Booking) Location() Address { return b.location }

// PricingType returns how the service is priced.
func (b *Booking) PricingType() PricingType { return b.pricingType }

// EstimatedCost returns the cost snapshotted from the catalog at creation.
func (b *Booking) EstimatedCost() decimal.Decimal { return b.estimatedCost }

// FinalCost returns the cost fixed on completion, or nil.
func (b *Booking) FinalCost() *decimal.Decimal { return b.finalCost }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// History returns the persisted status history in order of application.
func (b *Booking) History() []StatusHistoryEntry { return b.history }

// UncommittedHistory returns history entries appended in memory but not yet
// persisted. The repository drains this on update.
func (b *Booking) UncommittedHistory() []StatusHistoryEntry { return b.uncommittedHistory }

// WorkCompletedAt returns when the work was completed, or nil.
func (b *Booking) WorkCompletedAt() *time.Time { return b.workCompletedAt }

// PaymentStatus returns the payment collaborator's view of this booking.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// CustomerRating returns the customer's rating of the professional, or nil.
func (b *Booking) CustomerRating() *Rating { return b.customerRating }

// ProfessionalRating returns the professional's rating of the customer, or nil.
func (b *Booking) ProfessionalRating() *Rating { return b.professionalRating }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// ApplyTransition moves the booking into the target status on behalf of the
// actor. Checks run in order: actor authorization, then edge validity. Side
// effects: the accepted transition may fix the schedule, the completed
// transition may fix the final cost and stamps workCompletedAt. Every applied
// transition appends a history entry.
func (b *Booking) ApplyTransition(actorID uuid.UUID, target BookingStatus, note string, scheduled *Schedule, finalCost *decimal.Decimal) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid target status: %s", target))
	}
	if !b.CanTransitionTo(actorID, target) {
		return domain.NewForbiddenError(fmt.Sprintf("actor is not allowed to move booking to %s", target))
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidTransitionError(string(b.status), string(target))
	}

	now := time.Now().UTC()
	switch target {
	case StatusAccepted:
		if scheduled != nil {
			b.scheduled = scheduled
		}
	case StatusCompleted:
		if finalCost != nil {
			b.finalCost = finalCost
		}
		b.workCompletedAt = &now
	}

	b.status = target
	entry := StatusHistoryEntry{
		BookingID: b.id,
		Sequence:  int64(len(b.history) + len(b.uncommittedHistory) + 1),
		Status:    target,
		ChangedBy: actorID,
		ChangedAt: now,
		Note:      note,
	}
	b.uncommittedHistory = append(b.uncommittedHistory, entry)
	b.updatedAt = now
	return nil
}

// AttachRating fills the rating slot for the actor's role. The booking must be
// completed and the slot must be empty; a filled slot is immutable.
func (b *Booking) AttachRating(actorID uuid.UUID, rating Rating) error {
	if b.status != StatusCompleted {
		return domain.NewInvalidStateError("booking can only be rated once completed")
	}
	switch b.ParticipantRole(actorID) {
	case RoleCustomer:
		if b.customerRating != nil {
			return domain.NewConflictError("customer rating already submitted")
		}
		b.customerRating = &rating
	case RoleProfessional:
		if b.professionalRating != nil {
			return domain.NewConflictError("professional rating already submitted")
		}
		b.professionalRating = &rating
	default:
		return domain.NewForbiddenError("actor is not a party to this booking")
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
