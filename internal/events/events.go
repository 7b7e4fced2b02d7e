package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics this service produces to and consumes from.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on booking.events.
const (
	BookingCreated       = "booking.created"
	BookingAccepted      = "booking.accepted"
	BookingRejected      = "booking.rejected"
	BookingConfirmed     = "booking.confirmed"
	BookingStarted       = "booking.started"
	BookingCompleted     = "booking.completed"
	BookingCancelled     = "booking.cancelled"
	BookingDisputed      = "booking.disputed"
	BookingMessagePosted = "booking.message_posted"
	BookingRated         = "booking.rated"
)

// Event types consumed from payment.events.
const (
	PaymentCaptured = "payment.captured"
	PaymentRefunded = "payment.refunded"
	PaymentDisputed = "payment.disputed"
)

// BookingCreatedEvent announces a new pending booking to downstream services.
type BookingCreatedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	ServiceID      uuid.UUID `json:"service_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	Urgency        string    `json:"urgency"`
	EstimatedCost  string    `json:"estimated_cost"`
	Currency       string    `json:"currency"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent announces a lifecycle transition. The Type of the
// enclosing CloudEvent names the specific transition.
type BookingStatusChangedEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	BookingNumber  string    `json:"booking_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	ChangedBy      uuid.UUID `json:"changed_by"`
	Note           string    `json:"note,omitempty"`
	FinalCost      string    `json:"final_cost,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// MessagePostedEvent announces a new conversation message.
type MessagePostedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	MessageID  uuid.UUID `json:"message_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingRatedEvent announces a submitted rating.
type BookingRatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	RatedBy    uuid.UUID `json:"rated_by"`
	Role       string    `json:"role"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentStatusEvent is the payload of payment.captured and payment.refunded
// events emitted by the payment service.
type PaymentStatusEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DisputeOpenedEvent is the payload of payment.disputed events. It is the only
// path into the disputed booking status.
type DisputeOpenedEvent struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	OpenedBy   uuid.UUID `json:"opened_by"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
