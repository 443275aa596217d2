package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-registration/config"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-user-registration/pkg/mailer/templates"
)

type fakePublisher struct {
	bodies []any
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.bodies = append(f.bodies, body)
	return f.err
}

func testUser() *entity.User {
	return &entity.User{
		ID:           "2b1c6c8e-0000-4000-8000-000000000001",
		Name:         "John Doe",
		Email:        "johndoe@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWelcomePublisher_PublishesJob(t *testing.T) {
	pub := &fakePublisher{}
	cfg := &config.Config{AppName: "registry", CompanyName: "Acme", MailSendEnabled: true}
	p := NewWelcomePublisher(pub, cfg)

	require.NoError(t, p.UserRegistered(context.Background(), testUser()))
	require.Len(t, pub.bodies, 1)

	job, ok := pub.bodies[0].(mailer.EmailJob)
	require.True(t, ok)
	assert.Equal(t, "johndoe@example.com", job.To)
	assert.Equal(t, tpl.Welcome, job.Template)
	assert.Equal(t, "John Doe", job.Data["Name"])
	assert.Equal(t, "Acme", job.Data["CompanyName"])
	assert.Equal(t, tpl.Welcome, job.Data["Type"])
	for k, v := range job.Data {
		assert.NotEqual(t, testUser().PasswordHash, v, "hash leaked in field %s", k)
	}
}

func TestWelcomePublisher_CarriesClientMeta(t *testing.T) {
	pub := &fakePublisher{}
	p := NewWelcomePublisher(pub, &config.Config{MailSendEnabled: true})
	ctx := helpers.WithClientMeta(context.Background(), helpers.ClientMeta{IP: "203.0.113.7", UserAgent: "curl/8.0"})

	require.NoError(t, p.UserRegistered(ctx, testUser()))
	require.Len(t, pub.bodies, 1)
	job := pub.bodies[0].(mailer.EmailJob)
	assert.Equal(t, "203.0.113.7", job.Data["IP"])
	assert.Equal(t, "curl/8.0", job.Data["UserAgent"])
}

func TestWelcomePublisher_Disabled(t *testing.T) {
	pub := &fakePublisher{}
	p := NewWelcomePublisher(pub, &config.Config{MailSendEnabled: false})

	require.NoError(t, p.UserRegistered(context.Background(), testUser()))
	assert.Empty(t, pub.bodies)
}

func TestWelcomePublisher_PropagatesError(t *testing.T) {
	boom := errors.New("channel closed")
	p := NewWelcomePublisher(&fakePublisher{err: boom}, &config.Config{MailSendEnabled: true})

	assert.ErrorIs(t, p.UserRegistered(context.Background(), testUser()), boom)
}
