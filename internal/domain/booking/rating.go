package booking

import (
	"time"

	"github.com/homelink-services/service-bookings/pkg/domain"
)

// Rating is a post-completion score from one party about the other. A booking
// has two independent rating slots, one per role. A submitted rating is
// immutable.
type Rating struct {
	Rating  int       `json:"rating"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// NewRating validates the score and builds a Rating stamped with the current time.
func NewRating(score int, review string) (Rating, error) {
	if score < 1 || score > 5 {
		return Rating{}, domain.NewValidationError("rating must be an integer between 1 and 5")
	}
	return Rating{
		Rating:  score,
		Review:  review,
		RatedAt: time.Now().UTC(),
	}, nil
}
