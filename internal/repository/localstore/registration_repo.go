package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"gaoexevents/internal/domain"
)

func registrationPath(userID, eventID string) string {
	return "users/" + userID + "/events/" + eventID
}

func registrationPrefix(userID string) string {
	return "users/" + userID + "/events/"
}

type registrationRepository struct {
	store  *Store
	logger *slog.Logger
}

func NewRegistrationRepository(store *Store, logger *slog.Logger) domain.RegistrationRepository {
	return &registrationRepository{store: store, logger: logger}
}

func (r *registrationRepository) Put(ctx context.Context, reg *domain.Registration) (bool, error) {
	return r.store.Insert(ctx, registrationPath(reg.UserID, reg.EventID), reg)
}

func (r *registrationRepository) Get(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	var reg domain.Registration
	if err := r.store.Get(ctx, registrationPath(userID, eventID), &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Registration, error) {
	regs := make([]*domain.Registration, 0)
	err := r.store.List(ctx, registrationPrefix(userID), func(path string, value []byte) error {
		var reg domain.Registration
		if err := json.Unmarshal(value, &reg); err != nil {
			return fmt.Errorf("decode registration %s: %w", path, err)
		}
		regs = append(regs, &reg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].Date.Equal(regs[j].Date) {
			return regs[i].Date.Before(regs[j].Date)
		}
		return regs[i].CreatedAt.Before(regs[j].CreatedAt)
	})
	return regs, nil
}

func (r *registrationRepository) Delete(ctx context.Context, userID, eventID string) error {
	return r.store.Delete(ctx, registrationPath(userID, eventID))
}

// WatchByUser streams registration snapshots for one user, driven by the
// store's in-process change hub.
func (r *registrationRepository) WatchByUser(ctx context.Context, userID string) (<-chan []*domain.Registration, func(), error) {
	ticks, unsubscribe := r.store.Watch(registrationPrefix(userID))

	initial, err := r.ListByUser(ctx, userID)
	if err != nil {
		unsubscribe()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan []*domain.Registration, 1)
	ch <- initial

	go func() {
		defer close(ch)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
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

	stop := func() {
		cancel()
	}
	return ch, stop, nil
}
