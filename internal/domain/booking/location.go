package booking

import (
	"github.com/homelink-services/service-bookings/pkg/domain"
)

const maxInstructionsLength = 300

// Address is the service location for a booking. All four address fields are
// required; coordinates and access instructions are optional.
type Address struct {
	Street       string   `json:"street"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
}

// Validate checks the required address fields and the instructions limit.
func (a Address) Validate() error {
	if a.Street == "" {
		return domain.NewValidationError("street is required")
	}
	if a.City == "" {
		return domain.NewValidationError("city is required")
	}
	if a.State == "" {
		return domain.NewValidationError("state is required")
	}
	if a.PostalCode == "" {
		return domain.NewValidationError("postal code is required")
	}
	if len(a.Instructions) > maxInstructionsLength {
		return domain.NewValidationError("instructions must be at most 300 characters")
	}
	return nil
}
