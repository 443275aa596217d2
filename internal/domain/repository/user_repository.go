package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
)

var (
	// ErrUserNotFound is returned by FindByEmail when no user has the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned by Create when the email is already stored.
	ErrEmailTaken = errors.New("email already taken")
)

// CreateUserParams carries the fields a caller supplies on creation.
// ID and CreatedAt are assigned by the repository.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// UserRepository defines the interface for user-related storage operations.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Create never overwrites: a duplicate email fails with ErrEmailTaken.
	Create(ctx context.Context, p CreateUserParams) (*entity.User, error)
}
