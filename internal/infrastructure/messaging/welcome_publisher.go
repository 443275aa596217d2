package messaging

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-user-registration/config"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
	tpl "github.com/oksasatya/go-ddd-user-registration/pkg/mailer/templates"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// WelcomePublisher enqueues a welcome email job for every registered user.
// The email worker renders and delivers it.
type WelcomePublisher struct {
	Pub JSONPublisher
	Cfg *config.Config
}

func NewWelcomePublisher(pub JSONPublisher, cfg *config.Config) *WelcomePublisher {
	return &WelcomePublisher{Pub: pub, Cfg: cfg}
}

func (p *WelcomePublisher) UserRegistered(ctx context.Context, u *entity.User) error {
	if p.Pub == nil || p.Cfg == nil || !p.Cfg.MailSendEnabled {
		return nil
	}
	opts := []tpl.Option{tpl.WithTime(u.CreatedAt)}
	if meta, ok := helpers.ClientMetaFrom(ctx); ok {
		opts = append(opts, tpl.WithIP(meta.IP), tpl.WithUserAgent(meta.UserAgent))
	}
	data := tpl.NewWelcomeData(p.Cfg, u.Name, u.Email, opts...)
	job := mailer.EmailJob{To: u.Email, Template: tpl.Welcome, Data: data}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.Pub.PublishJSON(c, job)
}
