package booking

import "github.com/google/uuid"

// Role is the relationship of an actor to a specific booking.
type Role string

const (
	RoleNone         Role = "none"
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
)

// ParticipantRole resolves an actor ID to its role on this booking by
// identity comparison against the customer and professional references.
func (b *Booking) ParticipantRole(actorID uuid.UUID) Role {
	switch actorID {
	case b.customerID:
		return RoleCustomer
	case b.professionalID:
		return RoleProfessional
	default:
		return RoleNone
	}
}

// CanView returns true if the actor is a party to this booking.
func (b *Booking) CanView(actorID uuid.UUID) bool {
	return b.ParticipantRole(actorID) != RoleNone
}

// CanMessage returns true if the actor may post to the booking's conversation.
func (b *Booking) CanMessage(actorID uuid.UUID) bool {
	return b.ParticipantRole(actorID) != RoleNone
}

// CanRate returns true if the actor may submit a rating: the actor must be a
// party to the booking and the work must be completed.
func (b *Booking) CanRate(actorID uuid.UUID) bool {
	return b.status == StatusCompleted && b.ParticipantRole(actorID) != RoleNone
}

// CanTransitionTo returns true if the actor's role matches the role required
// to move this booking into the target status.
func (b *Booking) CanTransitionTo(actorID uuid.UUID, target BookingStatus) bool {
	required := RequiredRole(target)
	if required == RoleNone {
		return false
	}
	return b.ParticipantRole(actorID) == required
}
