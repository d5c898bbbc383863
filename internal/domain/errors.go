package domain

import "errors"

// Sentinel errors shared across services and repositories. Handlers map each of
// these to exactly one HTTP status and user-facing message.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("not authenticated")
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// Eligibility failures carry the specific reason; both satisfy IsIneligibleDate.
	ErrEventInPast  = errors.New("event date has already passed")
	ErrSameDayEvent = errors.New("registration closes the day before the event")

	ErrDuplicateEmail = errors.New("email already in use")
)

// IsIneligibleDate reports whether err is one of the date-eligibility failures.
func IsIneligibleDate(err error) bool {
	return errors.Is(err, ErrEventInPast) || errors.Is(err, ErrSameDayEvent)
}
