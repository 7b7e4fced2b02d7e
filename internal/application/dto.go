package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceID       uuid.UUID             `json:"service_id" binding:"required"`
	Title           string                `json:"title" binding:"required"`
	Description     string                `json:"description"`
	Urgency         string                `json:"urgency"`
	Images          []string              `json:"images"`
	Requirements    []string              `json:"requirements"`
	PreferredDate   string                `json:"preferred_date" binding:"required"`
	PreferredTime   string                `json:"preferred_time" binding:"required"`
	AlternativeDate string                `json:"alternative_date"`
	AlternativeTime string                `json:"alternative_time"`
	Location        bookingDomain.Address `json:"location" binding:"required"`
}

// TransitionBookingRequest holds the data for a status transition.
type TransitionBookingRequest struct {
	Status        string           `json:"status" binding:"required"`
	Note          string           `json:"note"`
	ScheduledDate string           `json:"scheduled_date"`
	ScheduledTime string           `json:"scheduled_time"`
	FinalCost     *decimal.Decimal `json:"final_cost"`
}

// RateBookingRequest holds a rating submission.
type RateBookingRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

// PostMessageRequest holds a conversation message submission.
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// RatingDTO is the response representation of a rating slot.
type RatingDTO struct {
	Rating  int       `json:"rating"`
	Review  string    `json:"review,omitempty"`
	RatedAt time.Time `json:"rated_at"`
}

// StatusHistoryDTO is the response representation of one audit entry.
type StatusHistoryDTO struct {
	Sequence  int64     `json:"sequence"`
	Status    string    `json:"status"`
	ChangedBy uuid.UUID `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Note      string    `json:"note,omitempty"`
}

// ScheduleDTO is the response representation of a date/time pair.
type ScheduleDTO struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                       uuid.UUID             `json:"id"`
	BookingNumber            string                `json:"booking_number"`
	ServiceID                uuid.UUID             `json:"service_id"`
	CustomerID               uuid.UUID             `json:"customer_id"`
	ProfessionalID           uuid.UUID             `json:"professional_id"`
	Title                    string                `json:"title"`
	Description              string                `json:"description,omitempty"`
	Urgency                  string                `json:"urgency"`
	Images                   []string              `json:"images,omitempty"`
	Requirements             []string              `json:"requirements,omitempty"`
	Preferred                ScheduleDTO           `json:"preferred"`
	Alternative              *ScheduleDTO          `json:"alternative,omitempty"`
	Scheduled                *ScheduleDTO          `json:"scheduled,omitempty"`
	EstimatedDurationMinutes int                   `json:"estimated_duration_minutes"`
	Location                 bookingDomain.Address `json:"location"`
	PricingType              string                `json:"pricing_type"`
	EstimatedCost            decimal.Decimal       `json:"estimated_cost"`
	FinalCost                *decimal.Decimal      `json:"final_cost,omitempty"`
	Currency                 string                `json:"currency"`
	Status                   string                `json:"status"`
	StatusHistory            []StatusHistoryDTO    `json:"status_history"`
	WorkCompletedAt          *time.Time            `json:"work_completed_at,omitempty"`
	PaymentStatus            string                `json:"payment_status"`
	CustomerRating           *RatingDTO            `json:"customer_rating,omitempty"`
	ProfessionalRating       *RatingDTO            `json:"professional_rating,omitempty"`
	Version                  int64                 `json:"version"`
	CreatedAt                time.Time             `json:"created_at"`
	UpdatedAt                time.Time             `json:"updated_at"`
}

// MessageDTO is the response representation of a conversation message.
type MessageDTO struct {
	ID       uuid.UUID `json:"id"`
	Sequence int64     `json:"sequence"`
	SenderID uuid.UUID `json:"sender_id"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sent_at"`
	IsRead   bool      `json:"is_read"`
}

// BookingSummaryDTO is a condensed booking for dashboard listings.
type BookingSummaryDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	PreferredDate string    `json:"preferred_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomerSummaryDTO is the customer's dashboard projection.
type CustomerSummaryDTO struct {
	TotalBookings  int64               `json:"total_bookings"`
	ByStatus       map[string]int64    `json:"by_status"`
	ActiveCount    int64               `json:"active_count"`
	CompletedCount int64               `json:"completed_count"`
	Recent         []BookingSummaryDTO `json:"recent"`
}

// ProfessionalSummaryDTO is the professional's dashboard projection.
type ProfessionalSummaryDTO struct {
	ByStatus           map[string]int64 `json:"by_status"`
	PendingCount       int64            `json:"pending_count"`
	PendingUrgentCount int64            `json:"pending_urgent_count"`
}

// ProfessionalStatsDTO is the professional's public stats projection.
type ProfessionalStatsDTO struct {
	TotalBookings     int64    `json:"total_bookings"`
	CompletedBookings int64    `json:"completed_bookings"`
	AverageRating     *float64 `json:"average_rating,omitempty"`
	CompletionRate    float64  `json:"completion_rate"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// --- Conversion helpers ---

func toScheduleDTO(s bookingDomain.Schedule) ScheduleDTO {
	return ScheduleDTO{Date: s.Date.Format(bookingDomain.DateLayout), Time: s.Time}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	dto := BookingDTO{
		ID:                       bk.ID(),
		BookingNumber:            bk.BookingNumber(),
		ServiceID:                bk.ServiceID(),
		CustomerID:               bk.CustomerID(),
		ProfessionalID:           bk.ProfessionalID(),
		Title:                    bk.Title(),
		Description:              bk.Description(),
		Urgency:                  string(bk.Urgency()),
		Images:                   bk.Images(),
		Requirements:             bk.Requirements(),
		Preferred:                toScheduleDTO(bk.Preferred()),
		EstimatedDurationMinutes: bk.EstimatedDurationMinutes(),
		Location:                 bk.Location(),
		PricingType:              string(bk.PricingType()),
		EstimatedCost:            bk.EstimatedCost(),
		FinalCost:                bk.FinalCost(),
		Currency:                 bk.Currency(),
		Status:                   string(bk.Status()),
		WorkCompletedAt:          bk.WorkCompletedAt(),
		PaymentStatus:            string(bk.PaymentStatus()),
		Version:                  bk.Version(),
		CreatedAt:                bk.CreatedAt(),
		UpdatedAt:                bk.UpdatedAt(),
	}

	if alt := bk.Alternative(); alt != nil {
		s := toScheduleDTO(*alt)
		dto.Alternative = &s
	}
	if sched := bk.Scheduled(); sched != nil {
		s := toScheduleDTO(*sched)
		dto.Scheduled = &s
	}
	if cr := bk.CustomerRating(); cr != nil {
		dto.CustomerRating = &RatingDTO{Rating: cr.Rating, Review: cr.Review, RatedAt: cr.RatedAt}
	}
	if pr := bk.ProfessionalRating(); pr != nil {
		dto.ProfessionalRating = &RatingDTO{Rating: pr.Rating, Review: pr.Review, RatedAt: pr.RatedAt}
	}

	history := append([]bookingDomain.StatusHistoryEntry{}, bk.History()...)
	history = append(history, bk.UncommittedHistory()...)
	dto.StatusHistory = make([]StatusHistoryDTO, len(history))
	for i, entry := range history {
		dto.StatusHistory[i] = StatusHistoryDTO{
			Sequence:  entry.Sequence,
			Status:    string(entry.Status),
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
			Note:      entry.Note,
		}
	}
	return dto
}

func toMessageDTO(m bookingDomain.Message) MessageDTO {
	return MessageDTO{
		ID:       m.ID,
		Sequence: m.Sequence,
		SenderID: m.SenderID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		IsRead:   m.IsRead,
	}
}

func toMessageDTOs(msgs []bookingDomain.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = toMessageDTO(m)
	}
	return dtos
}

func toBookingSummaryDTO(bk *bookingDomain.Booking) BookingSummaryDTO {
	return BookingSummaryDTO{
		ID:            bk.ID(),
		Title:         bk.Title(),
		Status:        string(bk.Status()),
		PreferredDate: bk.Preferred().Date.Format(bookingDomain.DateLayout),
		CreatedAt:     bk.CreatedAt(),
	}
}
