package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAccepted   BookingStatus = "accepted"
	StatusRejected   BookingStatus = "rejected"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	// StatusDisputed has no edges in the transition table. It is entered only
	// out-of-band, when the payment collaborator reports a dispute.
	StatusDisputed BookingStatus = "disputed"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusCancelled:  {},
	StatusDisputed:   {},
}

// transitionRoles maps each target status to the participant role allowed to
// trigger the transition. The professional drives the engagement forward, the
// customer is the only party who can cancel.
var transitionRoles = map[BookingStatus]Role{
	StatusAccepted:   RoleProfessional,
	StatusRejected:   RoleProfessional,
	StatusConfirmed:  RoleProfessional,
	StatusInProgress: RoleProfessional,
	StatusCompleted:  RoleProfessional,
	StatusCancelled:  RoleCustomer,
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// RequiredRole returns the participant role allowed to move a booking into the
// target status, or RoleNone if no role-gated transition targets it.
func RequiredRole(target BookingStatus) Role {
	role, exists := transitionRoles[target]
	if !exists {
		return RoleNone
	}
	return role
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
