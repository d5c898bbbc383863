package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"gaoexevents/internal/domain"
)

func eventPath(id string) string { return "events/" + id }

type eventRepository struct {
	store *Store
}

func NewEventRepository(store *Store) domain.EventRepository {
	return &eventRepository{store: store}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	event.ID = uuid.NewString()
	return r.store.Set(ctx, eventPath(event.ID), event)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := r.store.Get(ctx, eventPath(id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	upcoming := make([]*domain.Event, 0)
	for _, event := range all {
		if !event.Date.Before(from) {
			upcoming = append(upcoming, event)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		if !upcoming[i].Date.Equal(upcoming[j].Date) {
			return upcoming[i].Date.Before(upcoming[j].Date)
		}
		return upcoming[i].CreatedAt.Before(upcoming[j].CreatedAt)
	})

	total := len(upcoming)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return upcoming[start:end], total, nil
}

func (r *eventRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Event, error) {
	all, err := r.listAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Event, 0)
	for _, event := range all {
		y1, m1, d1 := event.Date.Date()
		y2, m2, d2 := date.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			matched = append(matched, event)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *eventRepository) listAll(ctx context.Context) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	err := r.store.List(ctx, "events/", func(path string, value []byte) error {
		var event domain.Event
		if err := json.Unmarshal(value, &event); err != nil {
			return fmt.Errorf("decode event %s: %w", path, err)
		}
		events = append(events, &event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
