package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

// UserRepository keeps users in a map keyed by email.
// Used by tests and by the API when no database is configured.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]entity.User
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byEmail: make(map[string]entity.User),
		now:     time.Now,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// Create checks and inserts under one lock so concurrent duplicates cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, p repository.CreateUserParams) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[p.Email]; exists {
		return nil, repository.ErrEmailTaken
	}
	u := entity.User{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.byEmail[u.Email] = u
	return &u, nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}

var _ repository.UserRepository = (*UserRepository)(nil)
