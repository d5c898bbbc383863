package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gaoexevents/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	loc            *time.Location
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService creates an EventService backed by the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	loc *time.Location,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		loc:            loc,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, userID string, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return domain.ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthenticated
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	if strings.TrimSpace(event.Title) == "" {
		return domain.ErrInvalidInput
	}
	if event.Date.IsZero() {
		return domain.ErrInvalidInput
	}

	event.CreatedBy = userID
	now := s.now()
	event.CreatedAt = now
	event.UpdatedAt = now

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListUpcoming(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	events, total, err := s.eventRepo.ListUpcoming(ctx, today, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) ListByDate(ctx context.Context, date time.Time) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list events by date: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
