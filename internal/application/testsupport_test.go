package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homelink-services/service-bookings/internal/catalog"
	bookingDomain "github.com/homelink-services/service-bookings/internal/domain/booking"
	"github.com/homelink-services/service-bookings/pkg/domain"
	"github.com/homelink-services/service-bookings/pkg/kafka"
)

// capturedEvent is one event handed to the fake publisher.
type capturedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

// fakePublisher records published events in order.
type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *fakePublisher) PublishKeyed(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Event.Type
	}
	return out
}

// fakeCatalog serves a fixed set of service snapshots.
type fakeCatalog struct {
	services map[uuid.UUID]catalog.ServiceSnapshot
}

func (c *fakeCatalog) Get(_ context.Context, serviceID uuid.UUID) (*catalog.ServiceSnapshot, error) {
	snap, ok := c.services[serviceID]
	if !ok {
		return nil, domain.NewNotFoundError("Service", serviceID.String())
	}
	return &snap, nil
}

// fakeBookingRepo is an in-memory BookingRepository. It mirrors the store's
// concurrency contract: Update enforces the version check, SetRating fills a
// slot only once, MarkDisputed is idempotent.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	messages map[uuid.UUID][]bookingDomain.Message
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		messages: make(map[uuid.UUID][]bookingDomain.Message),
	}
}

// stateOf rebuilds a BookingState from the aggregate's getters so the fake can
// hand out independent copies, the way a row round-trip would.
func stateOf(b *bookingDomain.Booking) bookingDomain.BookingState {
	history := make([]bookingDomain.StatusHistoryEntry, 0, len(b.History())+len(b.UncommittedHistory()))
	history = append(history, b.History()...)
	history = append(history, b.UncommittedHistory()...)
	return bookingDomain.BookingState{
		ID:                       b.ID(),
		BookingNumber:            b.BookingNumber(),
		ServiceID:                b.ServiceID(),
		CustomerID:               b.CustomerID(),
		ProfessionalID:           b.ProfessionalID(),
		Title:                    b.Title(),
		Description:              b.Description(),
		Urgency:                  b.Urgency(),
		Images:                   b.Images(),
		Requirements:             b.Requirements(),
		Preferred:                b.Preferred(),
		Alternative:              b.Alternative(),
		Scheduled:                b.Scheduled(),
		EstimatedDurationMinutes: b.EstimatedDurationMinutes(),
		Location:                 b.Location(),
		PricingType:              b.PricingType(),
		EstimatedCost:            b.EstimatedCost(),
		FinalCost:                b.FinalCost(),
		Currency:                 b.Currency(),
		Status:                   b.Status(),
		History:                  history,
		WorkCompletedAt:          b.WorkCompletedAt(),
		PaymentStatus:            b.PaymentStatus(),
		CustomerRating:           b.CustomerRating(),
		ProfessionalRating:       b.ProfessionalRating(),
		Version:                  b.Version(),
		CreatedAt:                b.CreatedAt(),
		UpdatedAt:                b.UpdatedAt(),
	}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bookingDomain.ReconstructBooking(stateOf(b)), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.BookingNumber() == number {
			return bookingDomain.ReconstructBooking(stateOf(b)), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) byFilter(match func(*bookingDomain.Booking) bool, page, limit int) ([]*bookingDomain.Booking, int64) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if match(b) {
			all = append(all, bookingDomain.ReconstructBooking(stateOf(b)))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt().After(all[j].CreatedAt()) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total
}

func (r *fakeBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := r.byFilter(func(b *bookingDomain.Booking) bool { return b.CustomerID() == customerID }, page, limit)
	return items, total, nil
}

func (r *fakeBookingRepo) FindByProfessionalID(_ context.Context, professionalID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := r.byFilter(func(b *bookingDomain.Booking) bool { return b.ProfessionalID() == professionalID }, page, limit)
	return items, total, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, total := r.byFilter(func(*bookingDomain.Booking) bool { return true }, page, limit)
	return items, total, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, booking *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID()] = bookingDomain.ReconstructBooking(stateOf(booking))
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, booking *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.bookings[booking.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", booking.ID().String())
	}
	if current.Version() != booking.Version()-1 {
		return domain.NewConflictError("booking was modified concurrently, please retry")
	}
	// The payment status column belongs to SetPaymentStatus/MarkDisputed, so
	// the stored value wins over the caller's read snapshot.
	state := stateOf(booking)
	state.PaymentStatus = current.PaymentStatus()
	r.bookings[booking.ID()] = bookingDomain.ReconstructBooking(state)
	return nil
}

func (r *fakeBookingRepo) AppendMessage(_ context.Context, msg bookingDomain.Message) (bookingDomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread := r.messages[msg.BookingID]
	msg.Sequence = int64(len(thread) + 1)
	r.messages[msg.BookingID] = append(thread, msg)
	return msg, nil
}

func (r *fakeBookingRepo) ListMessages(_ context.Context, bookingID uuid.UUID) ([]bookingDomain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bookingDomain.Message(nil), r.messages[bookingID]...), nil
}

func (r *fakeBookingRepo) MarkMessagesRead(_ context.Context, bookingID, readerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread := r.messages[bookingID]
	for i := range thread {
		if thread[i].SenderID != readerID {
			thread[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeBookingRepo) SetRating(_ context.Context, bookingID uuid.UUID, role bookingDomain.Role, rating bookingDomain.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return domain.NewNotFoundError("Booking", bookingID.String())
	}
	if b.Status() != bookingDomain.StatusCompleted {
		return domain.NewInvalidStateError("booking can only be rated once completed")
	}

	state := stateOf(b)
	switch role {
	case bookingDomain.RoleCustomer:
		if state.CustomerRating != nil {
			return domain.NewConflictError("customer rating already submitted")
		}
		state.CustomerRating = &rating
	case bookingDomain.RoleProfessional:
		if state.ProfessionalRating != nil {
			return domain.NewConflictError("professional rating already submitted")
		}
		state.ProfessionalRating = &rating
	default:
		return domain.NewForbiddenError("actor is not a party to this booking")
	}
	r.bookings[bookingID] = bookingDomain.ReconstructBooking(state)
	return nil
}

func (r *fakeBookingRepo) SetPaymentStatus(_ context.Context, bookingID uuid.UUID, status bookingDomain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return domain.NewNotFoundError("Booking", bookingID.String())
	}
	state := stateOf(b)
	state.PaymentStatus = status
	r.bookings[bookingID] = bookingDomain.ReconstructBooking(state)
	return nil
}

func (r *fakeBookingRepo) MarkDisputed(_ context.Context, bookingID, changedBy uuid.UUID, note string) (bookingDomain.BookingStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return "", domain.NewNotFoundError("Booking", bookingID.String())
	}
	previous := b.Status()
	if previous == bookingDomain.StatusDisputed {
		return previous, nil
	}
	state := stateOf(b)
	state.Status = bookingDomain.StatusDisputed
	state.PaymentStatus = bookingDomain.PaymentDisputed
	state.Version++
	state.History = append(state.History, bookingDomain.StatusHistoryEntry{
		BookingID: bookingID,
		Sequence:  int64(len(state.History) + 1),
		Status:    bookingDomain.StatusDisputed,
		ChangedBy: changedBy,
		Note:      note,
	})
	r.bookings[bookingID] = bookingDomain.ReconstructBooking(state)
	return previous, nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countWhere(func(*bookingDomain.Booking) bool { return true }), nil
}

func (r *fakeBookingRepo) CountByStatusForCustomer(_ context.Context, customerID uuid.UUID) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countWhere(func(b *bookingDomain.Booking) bool { return b.CustomerID() == customerID }), nil
}

func (r *fakeBookingRepo) CountByStatusForProfessional(_ context.Context, professionalID uuid.UUID) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countWhere(func(b *bookingDomain.Booking) bool { return b.ProfessionalID() == professionalID }), nil
}

func (r *fakeBookingRepo) countWhere(match func(*bookingDomain.Booking) bool) map[string]int64 {
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		if match(b) {
			counts[string(b.Status())]++
		}
	}
	return counts
}

func (r *fakeBookingRepo) CountPendingUrgent(_ context.Context, professionalID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.ProfessionalID() == professionalID && b.Status() == bookingDomain.StatusPending && b.Urgency().IsUrgent() {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) RecentForCustomer(_ context.Context, customerID uuid.UUID, limit int) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, _ := r.byFilter(func(b *bookingDomain.Booking) bool { return b.CustomerID() == customerID }, 1, limit)
	return items, nil
}

func (r *fakeBookingRepo) RatingStatsForProfessional(_ context.Context, professionalID uuid.UUID) (bookingDomain.RatingAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var agg bookingDomain.RatingAggregate
	var sum, rated int64
	for _, b := range r.bookings {
		if b.ProfessionalID() != professionalID {
			continue
		}
		agg.Total++
		if b.Status() == bookingDomain.StatusCompleted {
			agg.Completed++
		}
		if cr := b.CustomerRating(); cr != nil {
			sum += int64(cr.Rating)
			rated++
		}
	}
	if rated > 0 {
		avg := float64(sum) / float64(rated)
		agg.AverageRating = &avg
	}
	return agg, nil
}

func futureSchedule() bookingDomain.Schedule {
	return bookingDomain.Schedule{Date: time.Now().UTC().AddDate(0, 0, 7), Time: "10:00"}
}

// seedBooking stores a new pending booking and returns it.
func seedBooking(r *fakeBookingRepo, customerID, professionalID uuid.UUID) *bookingDomain.Booking {
	bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
		CustomerID:     customerID,
		ProfessionalID: professionalID,
		ServiceID:      uuid.New(),
		Title:          "Deep clean two-bedroom apartment",
		Urgency:        bookingDomain.UrgencyMedium,
		Preferred:      futureSchedule(),
		Location: bookingDomain.Address{
			Street:     "221 Pine Ave",
			City:       "Portland",
			State:      "OR",
			PostalCode: "97201",
		},
		PricingType:   bookingDomain.PricingFixed,
		EstimatedCost: decimal.NewFromInt(200),
		Currency:      "USD",
	})
	if err != nil {
		panic(err)
	}
	_ = r.Save(context.Background(), bk)
	return bk
}

// seedUrgentBooking stores a new pending booking with emergency urgency.
func seedUrgentBooking(r *fakeBookingRepo, customerID, professionalID uuid.UUID) *bookingDomain.Booking {
	bk, err := bookingDomain.NewBooking(bookingDomain.NewBookingParams{
		CustomerID:     customerID,
		ProfessionalID: professionalID,
		ServiceID:      uuid.New(),
		Title:          "Burst pipe flooding the basement",
		Urgency:        bookingDomain.UrgencyEmergency,
		Preferred:      futureSchedule(),
		Location: bookingDomain.Address{
			Street:     "19 River Rd",
			City:       "Portland",
			State:      "OR",
			PostalCode: "97202",
		},
		PricingType:   bookingDomain.PricingQuote,
		EstimatedCost: decimal.NewFromInt(0),
		Currency:      "USD",
	})
	if err != nil {
		panic(err)
	}
	_ = r.Save(context.Background(), bk)
	return bk
}

// advanceTo walks a stored booking along the happy path to the target status.
func advanceTo(r *fakeBookingRepo, bk *bookingDomain.Booking, target bookingDomain.BookingStatus) {
	path := []bookingDomain.BookingStatus{
		bookingDomain.StatusAccepted,
		bookingDomain.StatusConfirmed,
		bookingDomain.StatusInProgress,
		bookingDomain.StatusCompleted,
	}
	ctx := context.Background()
	for _, step := range path {
		current, err := r.FindByID(ctx, bk.ID())
		if err != nil {
			panic(err)
		}
		if err := current.ApplyTransition(current.ProfessionalID(), step, "", nil, nil); err != nil {
			panic(err)
		}
		current.IncrementVersion()
		if err := r.Update(ctx, current); err != nil {
			panic(err)
		}
		if step == target {
			return
		}
	}
}
