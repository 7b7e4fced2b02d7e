package repository

import (
	"encoding/json"
	"fmt"
	"time"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
)

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	imagesJSON, err := json.Marshal(bk.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	requirementsJSON, err := json.Marshal(bk.Requirements())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requirements: %w", err)
	}
	locationJSON, err := json.Marshal(bk.Location())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}

	model := &BookingModel{
		ID:                       bk.ID(),
		BookingNumber:            bk.BookingNumber(),
		ServiceID:                bk.ServiceID(),
		CustomerID:               bk.CustomerID(),
		ProfessionalID:           bk.ProfessionalID(),
		Title:                    bk.Title(),
		Description:              bk.Description(),
		Urgency:                  string(bk.Urgency()),
		Images:                   imagesJSON,
		Requirements:             requirementsJSON,
		PreferredDate:            bk.Preferred().Date,
		PreferredTime:            bk.Preferred().Time,
		EstimatedDurationMinutes: bk.EstimatedDurationMinutes(),
		Location:                 locationJSON,
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
		d := alt.Date
		model.AlternativeDate = &d
		model.AlternativeTime = alt.Time
	}
	if sched := bk.Scheduled(); sched != nil {
		d := sched.Date
		model.ScheduledDate = &d
		model.ScheduledTime = sched.Time
	}
	if cr := bk.CustomerRating(); cr != nil {
		score := cr.Rating
		at := cr.RatedAt
		model.CustomerRatingScore = &score
		model.CustomerRatingReview = cr.Review
		model.CustomerRatingAt = &at
	}
	if pr := bk.ProfessionalRating(); pr != nil {
		score := pr.Rating
		at := pr.RatedAt
		model.ProfessionalRatingScore = &score
		model.ProfessionalRatingReview = pr.Review
		model.ProfessionalRatingAt = &at
	}
	return model, nil
}

func toDomainBooking(m *BookingModel, history []bookingDomain.StatusHistoryEntry) (*bookingDomain.Booking, error) {
	var images []string
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}
	var requirements []string
	if len(m.Requirements) > 0 {
		if err := json.Unmarshal(m.Requirements, &requirements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal requirements: %w", err)
		}
	}
	var location bookingDomain.Address
	if err := json.Unmarshal(m.Location, &location); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	state := bookingDomain.BookingState{
		ID:                       m.ID,
		BookingNumber:            m.BookingNumber,
		ServiceID:                m.ServiceID,
		CustomerID:               m.CustomerID,
		ProfessionalID:           m.ProfessionalID,
		Title:                    m.Title,
		Description:              m.Description,
		Urgency:                  bookingDomain.Urgency(m.Urgency),
		Images:                   images,
		Requirements:             requirements,
		Preferred:                bookingDomain.Schedule{Date: m.PreferredDate, Time: m.PreferredTime},
		EstimatedDurationMinutes: m.EstimatedDurationMinutes,
		Location:                 location,
		PricingType:              bookingDomain.PricingType(m.PricingType),
		EstimatedCost:            m.EstimatedCost,
		FinalCost:                m.FinalCost,
		Currency:                 m.Currency,
		Status:                   status,
		History:                  history,
		WorkCompletedAt:          m.WorkCompletedAt,
		PaymentStatus:            bookingDomain.PaymentStatus(m.PaymentStatus),
		Version:                  m.Version,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}

	if m.AlternativeDate != nil {
		state.Alternative = &bookingDomain.Schedule{Date: *m.AlternativeDate, Time: m.AlternativeTime}
	}
	if m.ScheduledDate != nil {
		state.Scheduled = &bookingDomain.Schedule{Date: *m.ScheduledDate, Time: m.ScheduledTime}
	}
	if m.CustomerRatingScore != nil {
		state.CustomerRating = ratingFromColumns(*m.CustomerRatingScore, m.CustomerRatingReview, m.CustomerRatingAt)
	}
	if m.ProfessionalRatingScore != nil {
		state.ProfessionalRating = ratingFromColumns(*m.ProfessionalRatingScore, m.ProfessionalRatingReview, m.ProfessionalRatingAt)
	}

	return bookingDomain.ReconstructBooking(state), nil
}

func ratingFromColumns(score int, review string, at *time.Time) *bookingDomain.Rating {
	rating := bookingDomain.Rating{Rating: score, Review: review}
	if at != nil {
		rating.RatedAt = *at
	}
	return &rating
}

func toDomainMessage(m *MessageModel) bookingDomain.Message {
	return bookingDomain.Message{
		ID:        m.ID,
		BookingID: m.BookingID,
		Sequence:  m.Sequence,
		SenderID:  m.SenderID,
		Body:      m.Body,
		SentAt:    m.SentAt,
		IsRead:    m.IsRead,
	}
}
