package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homelink-services/service-bookings/internal/domain/booking"
)

// ServiceSnapshot is the slice of a catalog entry the booking engine needs at
// creation time. Pricing is copied onto the booking so later catalog edits
// never rewrite history.
type ServiceSnapshot struct {
	ID              uuid.UUID           `json:"id"`
	ProviderID      uuid.UUID           `json:"provider_id"`
	IsActive        bool                `json:"is_active"`
	PricingType     booking.PricingType `json:"pricing_type"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
	DurationMinutes int                 `json:"duration_minutes"`
}

// ServiceCatalog is the contract the booking engine consumes from the catalog
// service. It is satisfied by the HTTP client in this package and by fakes in
// tests.
type ServiceCatalog interface {
	// Get fetches the snapshot for a service. Absent services yield a
	// not-found domain error.
	Get(ctx context.Context, serviceID uuid.UUID) (*ServiceSnapshot, error)
}
