package booking

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/homelink-services/service-bookings/pkg/domain"
)

const maxMessageLength = 500

// Message is one entry in a booking's conversation thread. The thread is an
// append-only log: messages are never edited, reordered or removed.
type Message struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	Sequence  int64     `json:"sequence"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
	IsRead    bool      `json:"is_read"`
}

// NewMessage validates the body and builds an unread message from the sender.
func NewMessage(bookingID, senderID uuid.UUID, body string) (Message, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return Message{}, domain.NewValidationError("message body must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > maxMessageLength {
		return Message{}, domain.NewValidationError("message body must be at most 500 characters")
	}
	return Message{
		ID:        uuid.New(),
		BookingID: bookingID,
		SenderID:  senderID,
		Body:      trimmed,
		SentAt:    time.Now().UTC(),
		IsRead:    false,
	}, nil
}
