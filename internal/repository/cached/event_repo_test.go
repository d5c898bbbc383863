package cached

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gaoexevents/internal/domain"
)

type fakeKV struct {
	data        map[string][]byte
	getErr      error
	setErr      error
	invalidated []string
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (f *fakeKV) Get(ctx context.Context, key string, result any) (bool, error) {
	if f.getErr != nil {
		return false, f.getErr
	}
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *fakeKV) Set(ctx context.Context, key string, value any) error {
	if f.setErr != nil {
		return f.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeKV) Invalidate(ctx context.Context, keys ...string) error {
	f.invalidated = append(f.invalidated, keys...)
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type countingEventRepository struct {
	events  map[string]*domain.Event
	byID    int
	byDate  int
	created []*domain.Event
}

func (m *countingEventRepository) Create(ctx context.Context, event *domain.Event) error {
	event.ID = "event-uuid-1"
	m.created = append(m.created, event)
	return nil
}

func (m *countingEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.byID++
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (m *countingEventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	return []*domain.Event{}, 0, nil
}

func (m *countingEventRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Event, error) {
	m.byDate++
	out := make([]*domain.Event, 0)
	for _, event := range m.events {
		if event.Date.Equal(date) {
			out = append(out, event)
		}
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "e1", Title: "Sports Day"}
	inner := &countingEventRepository{events: map[string]*domain.Event{"e1": event}}
	kv := newFakeKV()
	repo := NewEventRepository(inner, kv, testLogger())

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "Sports Day", got.Title)
	require.Equal(t, 1, inner.byID)

	// Second read is served from the cache.
	got, err = repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "Sports Day", got.Title)
	require.Equal(t, 1, inner.byID)
}

func TestCachedEventRepository_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{ID: "e1", Title: "Sports Day"}
	inner := &countingEventRepository{events: map[string]*domain.Event{"e1": event}}
	kv := newFakeKV()
	kv.getErr = errors.New("redis down")
	kv.setErr = errors.New("redis down")
	repo := NewEventRepository(inner, kv, testLogger())

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.Equal(t, "Sports Day", got.Title)

	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCachedEventRepository_CreateInvalidatesDate(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	inner := &countingEventRepository{events: map[string]*domain.Event{}}
	kv := newFakeKV()
	repo := NewEventRepository(inner, kv, testLogger())

	// Warm the date listing, then create an event on that date.
	_, err := repo.ListByDate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 1, inner.byDate)

	_, err = repo.ListByDate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 1, inner.byDate)

	require.NoError(t, repo.Create(ctx, &domain.Event{Title: "Career Fair", Date: date}))
	require.Contains(t, kv.invalidated, "events:date:2026-09-10")

	_, err = repo.ListByDate(ctx, date)
	require.NoError(t, err)
	require.Equal(t, 2, inner.byDate)
}
