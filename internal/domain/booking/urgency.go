package booking

// Urgency is a priority hint used for sorting and filtering, never for
// authorization.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// IsValid returns true if the urgency is recognized.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// IsUrgent returns true for the urgency levels surfaced on the professional's
// dashboard as needing prompt attention.
func (u Urgency) IsUrgent() bool {
	return u == UrgencyHigh || u == UrgencyEmergency
}
