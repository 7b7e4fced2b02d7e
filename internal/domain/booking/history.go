package booking

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry records a single status change: who applied it and when.
// History is an append-only audit log persisted as one row per transition;
// creation itself is not logged, so the first entry appears on the first
// transition.
type StatusHistoryEntry struct {
	BookingID uuid.UUID     `json:"booking_id"`
	Sequence  int64         `json:"sequence"`
	Status    BookingStatus `json:"status"`
	ChangedBy uuid.UUID     `json:"changed_by"`
	ChangedAt time.Time     `json:"changed_at"`
	Note      string        `json:"note,omitempty"`
}
