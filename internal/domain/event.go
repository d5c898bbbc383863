package domain

import (
	"context"
	"time"
)

// Event is an entry in the organization's event catalog. Events are created by
// an admin and are immutable afterwards.
// swagger:model Event
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Date is the calendar day of the event; the time of day is not meaningful.
	Date      time.Time `json:"date"`
	TimeRange string    `json:"time_range"` // display string, e.g. "2:00 PM - 4:00 PM"
	Location  string    `json:"location"`
	Category  string    `json:"category"` // open set: Workshop, Fair, Seminar, ...
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, description string, date time.Time, timeRange, location, category, createdBy string, createdAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Date:        date,
		TimeRange:   timeRange,
		Location:    location,
		Category:    category,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EventRepository defines the interface for event catalog storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListUpcoming returns events dated on or after from, ordered by date
	// ascending, along with the total count for pagination.
	ListUpcoming(ctx context.Context, from time.Time, params PaginationParams) ([]*Event, int, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Event, error)
}

// EventService defines catalog operations exposed to the app.
type EventService interface {
	// CreateEvent creates a catalog event. Only admins may create events.
	CreateEvent(ctx context.Context, userID string, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListUpcoming(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Event, error)
}
