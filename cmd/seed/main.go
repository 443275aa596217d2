package main

import (
	"context"
	"errors"
	"flag"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-user-registration/config"
	"github.com/oksasatya/go-ddd-user-registration/internal/application"
	pginfra "github.com/oksasatya/go-ddd-user-registration/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	name := flag.String("name", "Demo User", "display name")
	email := flag.String("email", "demo@example.com", "email address")
	password := flag.String("password", "password123", "plaintext password")
	flag.Parse()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 2})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	uc := application.NewRegisterUseCase(
		pginfra.NewUserRepository(pool),
		helpers.NewBcryptHasher(cfg.BcryptCost),
		logger,
	)
	out, err := uc.Execute(ctx, application.RegisterInput{Name: *name, Email: *email, Password: *password})
	switch {
	case errors.Is(err, application.ErrUserAlreadyExists):
		logger.WithField("email", application.NormalizeEmail(*email)).Info("seed user already exists")
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	default:
		logger.WithField("user_id", out.User.ID).WithField("email", out.User.Email).Info("seeded user")
	}
}
