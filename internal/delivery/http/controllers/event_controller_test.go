package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaoexevents/internal/delivery/http/helpers"
	"gaoexevents/internal/delivery/http/middleware"
	"gaoexevents/internal/domain"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	createEventErr    error
	lastCreateUserID  string
	lastCreateEvent   *domain.Event
	getEventErr       error
	getEventResult    *domain.Event
	listUpcomingErr   error
	listUpcomingItems []*domain.Event
	listUpcomingTotal int
	lastListParams    domain.PaginationParams
	listByDateErr     error
	listByDateItems   []*domain.Event
	lastListByDate    time.Time
}

func (f *fakeEventService) CreateEvent(ctx context.Context, userID string, event *domain.Event) error {
	f.lastCreateUserID = userID
	f.lastCreateEvent = event
	if f.createEventErr != nil {
		return f.createEventErr
	}
	event.ID = "event-uuid-1"
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if f.getEventErr != nil {
		return nil, f.getEventErr
	}
	return f.getEventResult, nil
}

func (f *fakeEventService) ListUpcoming(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastListParams = params
	if f.listUpcomingErr != nil {
		return nil, 0, f.listUpcomingErr
	}
	return f.listUpcomingItems, f.listUpcomingTotal, nil
}

func (f *fakeEventService) ListByDate(ctx context.Context, date time.Time) ([]*domain.Event, error) {
	f.lastListByDate = date
	if f.listByDateErr != nil {
		return nil, f.listByDateErr
	}
	return f.listByDateItems, nil
}

func authedRequest(method, target string, body []byte, userID, role string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != "" {
		req = req.WithContext(middleware.SetIdentity(req.Context(), userID, role))
	}
	return req
}

func TestEventController_CreateEvent(t *testing.T) {
	validBody := func() []byte {
		raw, _ := json.Marshal(CreateEventRequest{
			Title:     "Leadership Excellence Workshop",
			Date:      "2026-09-10",
			TimeRange: "2:00 PM - 4:00 PM",
			Location:  "Main Auditorium",
			Category:  "Workshop",
		})
		return raw
	}

	t.Run("success", func(t *testing.T) {
		svc := &fakeEventService{}
		c := NewEventController(testLogger, svc, time.UTC)

		rr := httptest.NewRecorder()
		c.CreateEvent(rr, authedRequest(http.MethodPost, "/events", validBody(), "admin1", domain.RoleAdmin))

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "admin1", svc.lastCreateUserID)
		require.NotNil(t, svc.lastCreateEvent)
		assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), svc.lastCreateEvent.Date)
	})

	t.Run("no identity in context", func(t *testing.T) {
		c := NewEventController(testLogger, &fakeEventService{}, time.UTC)
		rr := httptest.NewRecorder()
		c.CreateEvent(rr, authedRequest(http.MethodPost, "/events", validBody(), "", ""))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("non-admin maps to 403", func(t *testing.T) {
		c := NewEventController(testLogger, &fakeEventService{createEventErr: domain.ErrForbidden}, time.UTC)
		rr := httptest.NewRecorder()
		c.CreateEvent(rr, authedRequest(http.MethodPost, "/events", validBody(), "m1", domain.RoleMember))
		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, helpers.ErrCodeForbidden, decodeError(t, rr).Code)
	})

	t.Run("bad date format", func(t *testing.T) {
		raw, _ := json.Marshal(CreateEventRequest{Title: "Sports Day", Date: "10/09/2026"})
		c := NewEventController(testLogger, &fakeEventService{}, time.UTC)
		rr := httptest.NewRecorder()
		c.CreateEvent(rr, authedRequest(http.MethodPost, "/events", raw, "admin1", domain.RoleAdmin))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventController_ListEvents(t *testing.T) {
	t.Run("paginated upcoming list", func(t *testing.T) {
		svc := &fakeEventService{
			listUpcomingItems: []*domain.Event{{ID: "e1", Title: "Sports Day"}},
			listUpcomingTotal: 41,
		}
		c := NewEventController(testLogger, svc, time.UTC)

		rr := httptest.NewRecorder()
		c.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=10", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 10}, svc.lastListParams)

		var envelope struct {
			Data ListEventsResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		assert.Len(t, envelope.Data.Items, 1)
		assert.Equal(t, 41, envelope.Data.Pagination.Total)
		assert.Equal(t, 5, envelope.Data.Pagination.TotalPages)
	})

	t.Run("date filter", func(t *testing.T) {
		svc := &fakeEventService{listByDateItems: []*domain.Event{{ID: "e1"}}}
		c := NewEventController(testLogger, svc, time.UTC)

		rr := httptest.NewRecorder()
		c.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events?date=2026-09-10", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), svc.lastListByDate)
	})

	t.Run("invalid date filter", func(t *testing.T) {
		c := NewEventController(testLogger, &fakeEventService{}, time.UTC)
		rr := httptest.NewRecorder()
		c.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events?date=tomorrow", nil))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty list is an array not null", func(t *testing.T) {
		c := NewEventController(testLogger, &fakeEventService{}, time.UTC)
		rr := httptest.NewRecorder()
		c.ListEvents(rr, httptest.NewRequest(http.MethodGet, "/events", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"items":[]`)
	})
}

func TestEventController_GetEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &fakeEventService{getEventResult: &domain.Event{ID: "e1", Title: "STEM Innovation Fair"}}
		c := NewEventController(testLogger, svc, time.UTC)

		req := httptest.NewRequest(http.MethodGet, "/events/e1", nil)
		req.SetPathValue("eventID", "e1")
		rr := httptest.NewRecorder()
		c.GetEvent(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "STEM Innovation Fair")
	})

	t.Run("not found", func(t *testing.T) {
		c := NewEventController(testLogger, &fakeEventService{getEventErr: domain.ErrNotFound}, time.UTC)
		req := httptest.NewRequest(http.MethodGet, "/events/missing", nil)
		req.SetPathValue("eventID", "missing")
		rr := httptest.NewRecorder()
		c.GetEvent(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, helpers.ErrCodeNotFound, decodeError(t, rr).Code)
	})
}
