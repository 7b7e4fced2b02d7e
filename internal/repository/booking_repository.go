package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/pkg/domain"
)

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking, including its status history, by identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}

	history, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomainBooking(&model, history)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}

	history, err := r.loadHistory(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return toDomainBooking(&model, history)
}

// FindByCustomerID retrieves a customer's bookings with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "customer_id = ?", customerID, page, limit)
}

// FindByProfessionalID retrieves a professional's bookings with pagination.
func (r *GormBookingRepository) FindByProfessionalID(ctx context.Context, professionalID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "professional_id = ?", professionalID, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "", nil, page, limit)
}

func (r *GormBookingRepository) findPage(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if cond != "" {
		query = query.Where(cond, arg)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		// Listings do not need per-booking history.
		bk, err := toDomainBooking(&m, nil)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
// Uncommitted history entries are inserted in the same transaction, so the
// status change and its audit row either both land or neither does.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// payment_status is owned by SetPaymentStatus and MarkDisputed;
		// writing it here would revert a payment event that landed between
		// the transition's read and this update.
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", model.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":            model.Status,
				"scheduled_date":    model.ScheduledDate,
				"scheduled_time":    model.ScheduledTime,
				"final_cost":        model.FinalCost,
				"work_completed_at": model.WorkCompletedAt,
				"version":           model.Version,
				"updated_at":        model.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update booking: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}

		for _, entry := range bk.UncommittedHistory() {
			row := StatusHistoryModel{
				BookingID: entry.BookingID,
				Sequence:  entry.Sequence,
				Status:    string(entry.Status),
				ChangedBy: entry.ChangedBy,
				ChangedAt: entry.ChangedAt,
				Note:      entry.Note,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to append status history: %w", err)
			}
		}
		return nil
	})
}

// AppendMessage atomically appends a message, assigning the next sequence in
// the same INSERT. A unique index on (booking_id, sequence) turns a lost race
// between concurrent senders into a retryable conflict instead of a lost
// message.
func (r *GormBookingRepository) AppendMessage(ctx context.Context, msg bookingDomain.Message) (bookingDomain.Message, error) {
	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO booking_messages (id, booking_id, sequence, sender_id, body, sent_at, is_read)
		SELECT ?, ?, COALESCE(MAX(sequence), 0) + 1, ?, ?, ?, ?
		FROM booking_messages WHERE booking_id = ?`,
		msg.ID, msg.BookingID, msg.SenderID, msg.Body, msg.SentAt, msg.IsRead, msg.BookingID,
	)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return bookingDomain.Message{}, domain.NewConflictError("concurrent message append, retry")
		}
		return bookingDomain.Message{}, fmt.Errorf("failed to append message: %w", result.Error)
	}

	var row MessageModel
	if err := r.db.WithContext(ctx).Where("id = ?", msg.ID).First(&row).Error; err != nil {
		return bookingDomain.Message{}, fmt.Errorf("failed to reload appended message: %w", err)
	}
	return toDomainMessage(&row), nil
}

// ListMessages returns the conversation thread in send order.
func (r *GormBookingRepository) ListMessages(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.Message, error) {
	var rows []MessageModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]bookingDomain.Message, len(rows))
	for i, row := range rows {
		messages[i] = toDomainMessage(&row)
	}
	return messages, nil
}

// MarkMessagesRead flags every unread message not sent by the reader. A single
// UPDATE keeps the operation atomic and idempotent.
func (r *GormBookingRepository) MarkMessagesRead(ctx context.Context, bookingID, readerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&MessageModel{}).
		Where("booking_id = ? AND sender_id <> ? AND is_read = ?", bookingID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return nil
}

// SetRating fills a rating slot with a conditional update: the booking must be
// completed and the slot empty. Submitted ratings are immutable.
func (r *GormBookingRepository) SetRating(ctx context.Context, bookingID uuid.UUID, role bookingDomain.Role, rating bookingDomain.Rating) error {
	var updates map[string]interface{}
	var guardColumn string
	switch role {
	case bookingDomain.RoleCustomer:
		guardColumn = "customer_rating_score"
		updates = map[string]interface{}{
			"customer_rating_score":  rating.Rating,
			"customer_rating_review": rating.Review,
			"customer_rating_at":     rating.RatedAt,
			"updated_at":             time.Now().UTC(),
		}
	case bookingDomain.RoleProfessional:
		guardColumn = "professional_rating_score"
		updates = map[string]interface{}{
			"professional_rating_score":  rating.Rating,
			"professional_rating_review": rating.Review,
			"professional_rating_at":     rating.RatedAt,
			"updated_at":                 time.Now().UTC(),
		}
	default:
		return domain.NewForbiddenError("actor is not a party to this booking")
	}

	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ? AND status = ? AND "+guardColumn+" IS NULL",
			bookingID, string(bookingDomain.StatusCompleted)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.explainRatingRejection(ctx, bookingID, guardColumn)
	}
	return nil
}

// explainRatingRejection re-reads the booking to return the precise error for
// a rejected conditional rating update.
func (r *GormBookingRepository) explainRatingRejection(ctx context.Context, bookingID uuid.UUID, guardColumn string) error {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("Booking", bookingID.String())
		}
		return fmt.Errorf("failed to reload booking: %w", err)
	}
	if model.Status != string(bookingDomain.StatusCompleted) {
		return domain.NewInvalidStateError("booking can only be rated once completed")
	}
	if guardColumn == "customer_rating_score" && model.CustomerRatingScore != nil {
		return domain.NewConflictError("customer rating already submitted")
	}
	if guardColumn == "professional_rating_score" && model.ProfessionalRatingScore != nil {
		return domain.NewConflictError("professional rating already submitted")
	}
	return domain.NewConflictError("rating was rejected by a concurrent update")
}

// SetPaymentStatus records the payment collaborator's view of a booking.
func (r *GormBookingRepository) SetPaymentStatus(ctx context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) error {
	result := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"payment_status": string(status),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", bookingID.String())
	}
	return nil
}

// MarkDisputed moves a booking into the disputed status out-of-band, appending
// the audit row in the same transaction. Already-disputed bookings are left
// untouched, so redelivered dispute events are harmless.
func (r *GormBookingRepository) MarkDisputed(ctx context.Context, bookingID, changedBy uuid.UUID, note string) (bookingDomain.BookingStatus, error) {
	now := time.Now().UTC()
	var previous string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BookingModel{}).
			Select("status").
			Where("id = ?", bookingID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Scan(&previous).Error; err != nil {
			return fmt.Errorf("failed to load booking status: %w", err)
		}
		if previous == "" {
			return domain.NewNotFoundError("Booking", bookingID.String())
		}
		if previous == string(bookingDomain.StatusDisputed) {
			return nil // already disputed
		}

		if err := tx.Model(&BookingModel{}).
			Where("id = ?", bookingID).
			Updates(map[string]interface{}{
				"status":         string(bookingDomain.StatusDisputed),
				"payment_status": string(bookingDomain.PaymentDisputed),
				"version":        gorm.Expr("version + 1"),
				"updated_at":     now,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark booking disputed: %w", err)
		}

		return tx.Exec(`
			INSERT INTO booking_status_history (booking_id, sequence, status, changed_by, changed_at, note)
			SELECT ?, COALESCE(MAX(sequence), 0) + 1, ?, ?, ?, ?
			FROM booking_status_history WHERE booking_id = ?`,
			bookingID, string(bookingDomain.StatusDisputed), changedBy, now, note, bookingID,
		).Error
	})
	if err != nil {
		return "", err
	}
	return bookingDomain.BookingStatus(previous), nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countByStatus(ctx, "", nil)
}

// CountByStatusForCustomer returns a customer's counts grouped by status.
func (r *GormBookingRepository) CountByStatusForCustomer(ctx context.Context, customerID uuid.UUID) (map[string]int64, error) {
	return r.countByStatus(ctx, "customer_id = ?", customerID)
}

// CountByStatusForProfessional returns a professional's counts grouped by status.
func (r *GormBookingRepository) CountByStatusForProfessional(ctx context.Context, professionalID uuid.UUID) (map[string]int64, error) {
	return r.countByStatus(ctx, "professional_id = ?", professionalID)
}

func (r *GormBookingRepository) countByStatus(ctx context.Context, cond string, arg interface{}) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if cond != "" {
		query = query.Where(cond, arg)
	}

	var results []statusCount
	if err := query.
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// CountPendingUrgent returns a professional's pending bookings with high or
// emergency urgency.
func (r *GormBookingRepository) CountPendingUrgent(ctx context.Context, professionalID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("professional_id = ? AND status = ? AND urgency IN ?",
			professionalID,
			string(bookingDomain.StatusPending),
			[]string{string(bookingDomain.UrgencyHigh), string(bookingDomain.UrgencyEmergency)},
		).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending urgent bookings: %w", err)
	}
	return count, nil
}

// RecentForCustomer returns the customer's most recent bookings, newest first.
func (r *GormBookingRepository) RecentForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m, nil)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// RatingStatsForProfessional computes totals and the average customer rating
// in one aggregate query. AVG ignores NULL slots, so only rated bookings count
// toward the average.
func (r *GormBookingRepository) RatingStatsForProfessional(ctx context.Context, professionalID uuid.UUID) (bookingDomain.RatingAggregate, error) {
	var row struct {
		Total     int64
		Completed int64
		Average   *float64
	}
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select(
			"count(*) as total, "+
				"count(*) filter (where status = ?) as completed, "+
				"avg(customer_rating_score) as average",
			string(bookingDomain.StatusCompleted),
		).
		Where("professional_id = ?", professionalID).
		Scan(&row).Error; err != nil {
		return bookingDomain.RatingAggregate{}, fmt.Errorf("failed to compute rating stats: %w", err)
	}

	return bookingDomain.RatingAggregate{
		Total:         row.Total,
		Completed:     row.Completed,
		AverageRating: row.Average,
	}, nil
}

func (r *GormBookingRepository) loadHistory(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.StatusHistoryEntry, error) {
	var rows []StatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}

	history := make([]bookingDomain.StatusHistoryEntry, len(rows))
	for i, row := range rows {
		history[i] = bookingDomain.StatusHistoryEntry{
			BookingID: row.BookingID,
			Sequence:  row.Sequence,
			Status:    bookingDomain.BookingStatus(row.Status),
			ChangedBy: row.ChangedBy,
			ChangedAt: row.ChangedAt,
			Note:      row.Note,
		}
	}
	return history, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// pgx surfaces SQLSTATE 23505 in the message when gorm's error
	// translator is not enabled.
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "23505")
}
