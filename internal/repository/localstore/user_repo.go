package localstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gaoexevents/internal/domain"
)

func userPath(id string) string          { return "users/" + id }
func emailIndexPath(email string) string { return "user_emails/" + email }

// storedUser carries the credential fields that domain.User hides from its
// JSON form.
type storedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	Salt         string    `json:"salt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toStoredUser(u *domain.User) *storedUser {
	return &storedUser{
		ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
		PasswordHash: u.PasswordHash, Salt: u.Salt,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func (s *storedUser) toDomain() *domain.User {
	return &domain.User{
		ID: s.ID, Email: s.Email, Name: s.Name, Role: s.Role,
		PasswordHash: s.PasswordHash, Salt: s.Salt,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{store: store}
}

// Create claims the email index document first so two signups with the same
// email cannot both succeed.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = uuid.NewString()
	created, err := r.store.Insert(ctx, emailIndexPath(user.Email), user.ID)
	if err != nil {
		return err
	}
	if !created {
		return domain.ErrDuplicateEmail
	}
	return r.store.Set(ctx, userPath(user.ID), toStoredUser(user))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var id string
	if err := r.store.Get(ctx, emailIndexPath(email), &id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var stored storedUser
	if err := r.store.Get(ctx, userPath(id), &stored); err != nil {
		return nil, err
	}
	return stored.toDomain(), nil
}
