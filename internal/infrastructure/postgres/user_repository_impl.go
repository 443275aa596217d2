package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)

	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// Create relies on the users_email_key constraint, so a concurrent duplicate
// fails atomically with repository.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, p repository.CreateUserParams) (*entity.User, error) {
	u := &entity.User{Name: p.Name, Email: p.Email, PasswordHash: p.PasswordHash}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.Name, p.Email, p.PasswordHash)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// mapError translates driver errors into repository sentinels; anything else passes through.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrEmailTaken
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
