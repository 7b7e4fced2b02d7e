package booking

import (
	"time"

	"github.com/homelink-services/service-bookings/pkg/domain"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for times of day.
	TimeLayout = "15:04"
)

// Schedule is a calendar date paired with a time of day, as supplied by the
// customer ("preferred"), optionally offered as an alternative, or fixed by
// the professional on acceptance ("scheduled").
type Schedule struct {
	Date time.Time `json:"date"`
	Time string    `json:"time"`
}

// ParseSchedule validates and combines a date and time-of-day string.
func ParseSchedule(date, timeOfDay string) (Schedule, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return Schedule{}, domain.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(TimeLayout, timeOfDay); err != nil {
		return Schedule{}, domain.NewValidationError("time must be formatted as HH:MM")
	}
	return Schedule{Date: d, Time: timeOfDay}, nil
}

// At returns the schedule as a single point in time in UTC.
func (s Schedule) At() time.Time {
	t, _ := time.Parse(TimeLayout, s.Time)
	return time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// IsPast reports whether the scheduled moment is before now.
func (s Schedule) IsPast(now time.Time) bool {
	return s.At().Before(now.UTC())
}
