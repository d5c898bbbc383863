package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"gaoexevents/internal/domain"
)

var eventCols = []string{"id", "title", "description", "date", "time_range", "location", "category", "created_by", "created_at", "updated_at"}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		event := &domain.Event{
			Title:     "Leadership Excellence Workshop",
			Date:      date,
			TimeRange: "2:00 PM - 4:00 PM",
			Location:  "Main Auditorium",
			Category:  "Workshop",
			CreatedBy: "admin-uuid-1",
			CreatedAt: now,
			UpdatedAt: now,
		}
		mock.ExpectQuery(`INSERT INTO events`).
			WithArgs(event.Title, "", date, event.TimeRange, event.Location, event.Category,
				sql.NullString{String: "admin-uuid-1", Valid: true}, now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("event-uuid-1"))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Create(ctx, event))
		require.Equal(t, "event-uuid-1", event.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)

		repo := NewEventRepository(db)
		require.Error(t, repo.Create(ctx, &domain.Event{Title: "Sports Day", Date: date}))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM events\s+WHERE id`).
			WithArgs("event-uuid-1").
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow("event-uuid-1", "STEM Innovation Fair", "Hands-on exhibits", date, "10:00 AM - 3:00 PM", "Science Hall", "Fair", "admin-uuid-1", now, now))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "event-uuid-1")
		require.NoError(t, err)
		require.Equal(t, "STEM Innovation Fair", event.Title)
		require.Equal(t, "admin-uuid-1", event.CreatedBy)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM events\s+WHERE id`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null created_by", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .* FROM events\s+WHERE id`).
			WithArgs("event-uuid-2").
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow("event-uuid-2", "Alumni Meet", "", date, "", "", "", nil, now, now))

		repo := NewEventRepository(db)
		event, err := repo.GetByID(ctx, "event-uuid-2")
		require.NoError(t, err)
		require.Empty(t, event.CreatedBy)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success with pagination", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
			WithArgs(from).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
		mock.ExpectQuery(`SELECT .* FROM events\s+WHERE date >=`).
			WithArgs(from, 20, 20).
			WillReturnRows(sqlmock.NewRows(eventCols).
				AddRow("event-uuid-1", "Sports Day", "", from.AddDate(0, 0, 3), "9:00 AM - 5:00 PM", "Stadium", "Sports", "admin-uuid-1", now, now).
				AddRow("event-uuid-2", "Alumni Meet", "", from.AddDate(0, 0, 5), "", "", "", nil, now, now))

		repo := NewEventRepository(db)
		events, total, err := repo.ListUpcoming(ctx, from, domain.PaginationParams{Page: 2, PageSize: 20})
		require.NoError(t, err)
		require.Equal(t, 42, total)
		require.Len(t, events, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is non-nil", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
			WithArgs(from).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT .* FROM events\s+WHERE date >=`).
			WithArgs(from, 20, 0).
			WillReturnRows(sqlmock.NewRows(eventCols))

		repo := NewEventRepository(db)
		events, total, err := repo.ListUpcoming(ctx, from, domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Zero(t, total)
		require.NotNil(t, events)
		require.Empty(t, events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ListByDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM events\s+WHERE date =`).
		WithArgs(date).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow("event-uuid-1", "Career Fair", "", date, "", "", "Fair", nil, now, now))

	repo := NewEventRepository(db)
	events, err := repo.ListByDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Career Fair", events[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}
