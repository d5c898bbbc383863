package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"gaoexevents/internal/domain"
)

const registrationsChannel = "registrations_changed"

type registrationRepository struct {
	db     *sql.DB
	dsn    string
	logger *slog.Logger
}

// NewRegistrationRepository builds the Postgres-backed registration store.
// The DSN is kept around because pq.Listener opens its own connection for
// LISTEN/NOTIFY.
func NewRegistrationRepository(db *sql.DB, dsn string, logger *slog.Logger) domain.RegistrationRepository {
	return &registrationRepository{db: db, dsn: dsn, logger: logger}
}

func (r *registrationRepository) Put(ctx context.Context, reg *domain.Registration) (bool, error) {
	query := `
		INSERT INTO registrations (user_id, event_id, title, description, date, time_range, location, category, name, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, event_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		reg.UserID, reg.EventID, reg.Title, reg.Description, reg.Date,
		reg.TimeRange, reg.Location, reg.Category, reg.Name, reg.Phone, reg.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert registration result: %w", err)
	}
	return affected == 1, nil
}

func (r *registrationRepository) Get(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	query := `
		SELECT user_id, event_id, title, description, date, time_range, location, category, name, phone, created_at
		FROM registrations
		WHERE user_id = $1 AND event_id = $2`

	var reg domain.Registration
	err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(
		&reg.UserID, &reg.EventID, &reg.Title, &reg.Description, &reg.Date,
		&reg.TimeRange, &reg.Location, &reg.Category, &reg.Name, &reg.Phone, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Registration, error) {
	query := `
		SELECT user_id, event_id, title, description, date, time_range, location, category, name, phone, created_at
		FROM registrations
		WHERE user_id = $1
		ORDER BY date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		var reg domain.Registration
		err := rows.Scan(
			&reg.UserID, &reg.EventID, &reg.Title, &reg.Description, &reg.Date,
			&reg.TimeRange, &reg.Location, &reg.Category, &reg.Name, &reg.Phone, &reg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return regs, nil
}

func (r *registrationRepository) Delete(ctx context.Context, userID, eventID string) error {
	query := `DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// WatchByUser streams registration snapshots for one user. A Postgres trigger
// sends the user ID on the registrations_changed channel after every insert,
// update or delete; notifications for other users are skipped.
func (r *registrationRepository) WatchByUser(ctx context.Context, userID string) (<-chan []*domain.Registration, func(), error) {
	listener := pq.NewListener(r.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("registration listener event", "event", int(ev), "error", err)
		}
	})
	if err := listener.Listen(registrationsChannel); err != nil {
		listener.Close()
		return nil, nil, fmt.Errorf("listen %s: %w", registrationsChannel, err)
	}

	initial, err := r.ListByUser(ctx, userID)
	if err != nil {
		listener.Close()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []*domain.Registration, 1)
	ch <- initial

	go func() {
		defer close(ch)
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				// A nil notification means the connection was re-established;
				// resend a snapshot in case changes were missed.
				if n != nil && n.Extra != userID {
					continue
				}
				regs, err := r.ListByUser(ctx, userID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					r.logger.WarnContext(ctx, "registration watch snapshot failed", "user_id", userID, "error", err)
					continue
				}
				select {
				case ch <- regs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, cancel, nil
}
