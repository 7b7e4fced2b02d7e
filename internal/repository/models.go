package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingModel is the GORM model for the bookings table. Rating slots are
// flattened into nullable columns so that submission can be a conditional
// update and averages can be computed in SQL.
type BookingModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber  string    `gorm:"uniqueIndex;not null;size:20"`
	ServiceID      uuid.UUID `gorm:"type:uuid;not null"`
	CustomerID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;index;not null"`

	Title        string          `gorm:"not null;size:200"`
	Description  string          `gorm:"size:1000"`
	Urgency      string          `gorm:"not null;size:20;index"`
	Images       json.RawMessage `gorm:"type:jsonb"`
	Requirements json.RawMessage `gorm:"type:jsonb"`

	PreferredDate   time.Time  `gorm:"not null"`
	PreferredTime   string     `gorm:"not null;size:5"`
	AlternativeDate *time.Time `gorm:""`
	AlternativeTime string     `gorm:"size:5"`
	ScheduledDate   *time.Time `gorm:""`
	ScheduledTime   string     `gorm:"size:5"`

	EstimatedDurationMinutes int             `gorm:"not null;default:0"`
	Location                 json.RawMessage `gorm:"type:jsonb;not null"`

	PricingType   string           `gorm:"not null;size:10"`
	EstimatedCost decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	FinalCost     *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Currency      string           `gorm:"not null;size:3"`

	Status          string     `gorm:"not null;size:20;index"`
	WorkCompletedAt *time.Time `gorm:""`
	PaymentStatus   string     `gorm:"not null;size:20;default:'pending'"`

	CustomerRatingScore      *int       `gorm:""`
	CustomerRatingReview     string     `gorm:"size:1000"`
	CustomerRatingAt         *time.Time `gorm:""`
	ProfessionalRatingScore  *int       `gorm:""`
	ProfessionalRatingReview string     `gorm:"size:1000"`
	ProfessionalRatingAt     *time.Time `gorm:""`

	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// StatusHistoryModel is one append-only status transition row.
type StatusHistoryModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_history_booking_seq,priority:1"`
	Sequence  int64     `gorm:"not null;uniqueIndex:idx_history_booking_seq,priority:2"`
	Status    string    `gorm:"not null;size:20"`
	ChangedBy uuid.UUID `gorm:"type:uuid;not null"`
	ChangedAt time.Time `gorm:"not null"`
	Note      string    `gorm:"size:500"`
}

// TableName returns the table name for the GORM model.
func (StatusHistoryModel) TableName() string {
	return "booking_status_history"
}

// MessageModel is one append-only conversation row.
type MessageModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_message_booking_seq,priority:1"`
	Sequence  int64     `gorm:"not null;uniqueIndex:idx_message_booking_seq,priority:2"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	Body      string    `gorm:"not null;size:500"`
	SentAt    time.Time `gorm:"not null"`
	IsRead    bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for the GORM model.
func (MessageModel) TableName() string {
	return "booking_messages"
}
