package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

var (
	registrationsTotal    = expvar.NewInt("registrations_total")
	registrationsRejected = expvar.NewInt("registrations_rejected")
)

// PasswordHasher derives a salted one-way hash from a plaintext password.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// RegistrationListener is notified after a user has been persisted.
// Errors are logged by the use case and never undo the registration.
type RegistrationListener interface {
	UserRegistered(ctx context.Context, u *entity.User) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterOutput struct {
	User *entity.User
}

// RegisterUseCase creates accounts with a hashed password and a unique email.
// It holds no per-call state and is safe for concurrent use.
type RegisterUseCase struct {
	Repo      repo.UserRepository
	Hasher    PasswordHasher
	Logger    *logrus.Logger
	Listeners []RegistrationListener
}

func NewRegisterUseCase(r repo.UserRepository, hasher PasswordHasher, logger *logrus.Logger, listeners ...RegistrationListener) *RegisterUseCase {
	return &RegisterUseCase{
		Repo:      r,
		Hasher:    hasher,
		Logger:    logger,
		Listeners: listeners,
	}
}

// NormalizeEmail is the case policy applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Execute registers a new user. A duplicate email fails with *UserAlreadyExistsError
// before any hashing; storage and hashing failures are returned wrapped but otherwise untouched.
func (uc *RegisterUseCase) Execute(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	email := NormalizeEmail(in.Email)

	existing, err := uc.Repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return RegisterOutput{}, uc.reject(email)
	case err != nil && !errors.Is(err, repo.ErrUserNotFound):
		return RegisterOutput{}, fmt.Errorf("find user by email: %w", err)
	}

	// bcrypt cannot be interrupted, so check before starting the expensive part
	if err := ctx.Err(); err != nil {
		return RegisterOutput{}, err
	}
	hash, err := uc.Hasher.Hash(in.Password)
	if err != nil {
		return RegisterOutput{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := uc.Repo.Create(ctx, repo.CreateUserParams{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// lost a race against a concurrent registration for the same email
		if errors.Is(err, repo.ErrEmailTaken) {
			return RegisterOutput{}, uc.reject(email)
		}
		return RegisterOutput{}, fmt.Errorf("create user: %w", err)
	}

	registrationsTotal.Add(1)
	if uc.Logger != nil {
		uc.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	}
	uc.notify(ctx, u)

	return RegisterOutput{User: u}, nil
}

func (uc *RegisterUseCase) reject(email string) error {
	registrationsRejected.Add(1)
	if uc.Logger != nil {
		uc.Logger.WithField("email", email).Debug("registration rejected: email already registered")
	}
	return &UserAlreadyExistsError{Email: email}
}

func (uc *RegisterUseCase) notify(ctx context.Context, u *entity.User) {
	for _, l := range uc.Listeners {
		if err := l.UserRegistered(ctx, u); err != nil && uc.Logger != nil {
			uc.Logger.WithError(err).WithField("user_id", u.ID).Warn("registration listener failed")
		}
	}
}
