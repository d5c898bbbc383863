package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Registration binds a user to an event together with the contact details
// entered at registration time. The event fields are a snapshot taken when the
// registration was created, not a live reference: later catalog changes never
// alter an existing registration. Identity key is (UserID, EventID).
// swagger:model Registration
type Registration struct {
	UserID      string    `json:"user_id"`
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	TimeRange   string    `json:"time_range"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewRegistration snapshots the event into a Registration for the given user.
func NewRegistration(userID string, event *Event, name, phone string, createdAt time.Time) *Registration {
	return &Registration{
		UserID:      userID,
		EventID:     event.ID,
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		TimeRange:   event.TimeRange,
		Location:    event.Location,
		Category:    event.Category,
		Name:        name,
		Phone:       phone,
		CreatedAt:   createdAt,
	}
}

var phoneRegexp = regexp.MustCompile(`^\d{10}$`)

// ValidateContact checks the registrant contact fields: name must be non-blank,
// phone must be exactly ten digits.
func ValidateContact(name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	if !phoneRegexp.MatchString(phone) {
		return ErrInvalidInput
	}
	return nil
}

// CheckEligibility decides whether an event dated eventDate may still be
// registered for as of asOf. Both instants are truncated to calendar days in
// loc before comparison: a past event fails with ErrEventInPast, a same-day
// event with ErrSameDayEvent. Registration must be lodged at least one full
// day ahead of the event to leave logistics lead time.
func CheckEligibility(eventDate, asOf time.Time, loc *time.Location) error {
	event := truncateToDay(eventDate, loc)
	today := truncateToDay(asOf, loc)
	switch {
	case event.Before(today):
		return ErrEventInPast
	case event.Equal(today):
		return ErrSameDayEvent
	default:
		return nil
	}
}

func truncateToDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// RegistrationRepository defines storage for per-user registrations. The store
// is partitioned by user; implementations must enforce the (user, event)
// uniqueness on the write path itself, not only via a prior read.
type RegistrationRepository interface {
	// Put stores reg keyed by (UserID, EventID). It returns created=false and
	// no error when a record for the key already exists; the insert must be
	// conditional at the store so two near-simultaneous Puts for one key
	// cannot both create.
	Put(ctx context.Context, reg *Registration) (created bool, err error)
	Get(ctx context.Context, userID, eventID string) (*Registration, error)
	ListByUser(ctx context.Context, userID string) ([]*Registration, error)
	// Delete removes the record, returning ErrNotFound when it is absent.
	Delete(ctx context.Context, userID, eventID string) error
	// WatchByUser emits the user's full registration list after every change,
	// starting with the current snapshot. The stream ends when stop is called
	// or ctx is done.
	WatchByUser(ctx context.Context, userID string) (snapshots <-chan []*Registration, stop func(), err error)
}

// RegistrationService enforces eligibility, contact validation, and uniqueness
// for event registration, and exposes retrieval and removal.
type RegistrationService interface {
	// CheckEligibility reports why the event cannot be registered for as of
	// asOf, or nil when it can.
	CheckEligibility(event *Event, asOf time.Time) error
	Register(ctx context.Context, userID, eventID, name, phone string) (*Registration, error)
	ListRegistrations(ctx context.Context, userID string) ([]*Registration, error)
	// RemoveRegistration is intentionally not idempotent: removing an absent
	// key returns ErrNotFound so caller bugs surface instead of passing silently.
	RemoveRegistration(ctx context.Context, userID, eventID string) error
	WatchRegistrations(ctx context.Context, userID string) (<-chan []*Registration, func(), error)
}
