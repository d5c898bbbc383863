// Package cached decorates the event repository with a read-through cache.
// Cache trouble is never fatal; every path falls back to the inner store.
package cached

import (
	"context"
	"log/slog"
	"time"

	"gaoexevents/internal/domain"
)

// KV is the slice of the cache the decorator needs.
type KV interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

func eventKey(id string) string { return "event:" + id }

func dateKey(date time.Time) string { return "events:date:" + date.Format("2006-01-02") }

type eventRepository struct {
	inner  domain.EventRepository
	kv     KV
	logger *slog.Logger
}

func NewEventRepository(inner domain.EventRepository, kv KV, logger *slog.Logger) domain.EventRepository {
	return &eventRepository{inner: inner, kv: kv, logger: logger}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	if err := r.inner.Create(ctx, event); err != nil {
		return err
	}
	if err := r.kv.Invalidate(ctx, dateKey(event.Date)); err != nil {
		r.logger.WarnContext(ctx, "event cache invalidation failed", "event_id", event.ID, "error", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var cachedEvent domain.Event
	hit, err := r.kv.Get(ctx, eventKey(id), &cachedEvent)
	if err != nil {
		r.logger.WarnContext(ctx, "event cache read failed", "event_id", id, "error", err)
	} else if hit {
		return &cachedEvent, nil
	}

	event, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.kv.Set(ctx, eventKey(id), event); err != nil {
		r.logger.WarnContext(ctx, "event cache write failed", "event_id", id, "error", err)
	}
	return event, nil
}

// ListUpcoming is not cached. The paginated window moves with the clock, so
// keys would churn faster than they could be reused.
func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return r.inner.ListUpcoming(ctx, from, params)
}

func (r *eventRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Event, error) {
	var cachedEvents []*domain.Event
	hit, err := r.kv.Get(ctx, dateKey(date), &cachedEvents)
	if err != nil {
		r.logger.WarnContext(ctx, "event cache read failed", "date", date, "error", err)
	} else if hit {
		return cachedEvents, nil
	}

	events, err := r.inner.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := r.kv.Set(ctx, dateKey(date), events); err != nil {
		r.logger.WarnContext(ctx, "event cache write failed", "date", date, "error", err)
	}
	return events, nil
}
