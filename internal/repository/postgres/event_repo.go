package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gaoexevents/internal/domain"
)

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, time_range, location, category, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	createdBy := sql.NullString{String: event.CreatedBy, Valid: event.CreatedBy != ""}
	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Date, event.TimeRange,
		event.Location, event.Category, createdBy, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, description, date, time_range, location, category, created_by, created_at, updated_at
		FROM events
		WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE date >= $1`
	if err := r.db.QueryRowContext(ctx, countQuery, from).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count upcoming events: %w", err)
	}

	query := `
		SELECT id, title, description, date, time_range, location, category, created_by, created_at, updated_at
		FROM events
		WHERE date >= $1
		ORDER BY date ASC, created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, from, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list upcoming events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, date, time_range, location, category, created_by, created_at, updated_at
		FROM events
		WHERE date = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list events by date: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var event domain.Event
	var createdBy sql.NullString
	err := row.Scan(
		&event.ID, &event.Title, &event.Description, &event.Date, &event.TimeRange,
		&event.Location, &event.Category, &createdBy, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.CreatedBy = createdBy.String
	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
