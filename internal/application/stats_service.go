package application

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
)

const recentBookingsLimit = 5

// StatsService builds read-only dashboard projections over bookings. It never
// mutates records.
type StatsService struct {
	repo bookingDomain.BookingRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo bookingDomain.BookingRepository) *StatsService {
	return &StatsService{repo: repo}
}

// CustomerSummary builds the customer's dashboard: totals, status breakdown,
// and the five most recent bookings.
func (s *StatsService) CustomerSummary(ctx context.Context, customerID uuid.UUID) (*CustomerSummaryDTO, error) {
	counts, err := s.repo.CountByStatusForCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var total, active int64
	for status, c := range counts {
		total += c
		switch bookingDomain.BookingStatus(status) {
		case bookingDomain.StatusAccepted, bookingDomain.StatusConfirmed, bookingDomain.StatusInProgress:
			active += c
		}
	}

	recent, err := s.repo.RecentForCustomer(ctx, customerID, recentBookingsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent bookings: %w", err)
	}
	recentDTOs := make([]BookingSummaryDTO, len(recent))
	for i, bk := range recent {
		recentDTOs[i] = toBookingSummaryDTO(bk)
	}

	return &CustomerSummaryDTO{
		TotalBookings:  total,
		ByStatus:       counts,
		ActiveCount:    active,
		CompletedCount: counts[string(bookingDomain.StatusCompleted)],
		Recent:         recentDTOs,
	}, nil
}

// ProfessionalSummary builds the professional's work-queue dashboard.
func (s *StatsService) ProfessionalSummary(ctx context.Context, professionalID uuid.UUID) (*ProfessionalSummaryDTO, error) {
	counts, err := s.repo.CountByStatusForProfessional(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to count professional bookings: %w", err)
	}

	urgent, err := s.repo.CountPendingUrgent(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to count urgent bookings: %w", err)
	}

	return &ProfessionalSummaryDTO{
		ByStatus:           counts,
		PendingCount:       counts[string(bookingDomain.StatusPending)],
		PendingUrgentCount: urgent,
	}, nil
}

// ProfessionalStats builds the professional's public stats. The completion
// rate is defined as 0 for a professional with no bookings.
func (s *StatsService) ProfessionalStats(ctx context.Context, professionalID uuid.UUID) (*ProfessionalStatsDTO, error) {
	agg, err := s.repo.RatingStatsForProfessional(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating stats: %w", err)
	}

	var completionRate float64
	if agg.Total > 0 {
		completionRate = math.Round(float64(agg.Completed)/float64(agg.Total)*1000) / 10
	}

	return &ProfessionalStatsDTO{
		TotalBookings:     agg.Total,
		CompletedBookings: agg.Completed,
		AverageRating:     agg.AverageRating,
		CompletionRate:    completionRate,
	}, nil
}
