package model

import (
	"fmt"
	"time"
)

// Layouts of the Event date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is a calendar entry. It is immutable after creation; the only
// mutation is deletion.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Day returns the event's calendar date at midnight in loc.
func (e Event) Day(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, e.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("model: event %s date %q: %w", e.ID, e.Date, err)
	}
	return d, nil
}

// Start combines Date and Time into one comparable instant in loc.
// This is the composite key the event list is ordered by.
func (e Event) Start(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+e.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("model: event %s start %q %q: %w", e.ID, e.Date, e.Time, err)
	}
	return t, nil
}
