package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-registration/pkg/helpers"
	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-user-registration/pkg/mailer/templates"
)

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Requeue
)

// ErrEmptyJob marks jobs that have neither a template nor a subject with a body.
var ErrEmptyJob = errors.New("email job has no template and no content")

// EmailProcessor renders queued email jobs and hands them to a Sender.
type EmailProcessor struct {
	Sender   mailer.Sender
	Resolver mailtpl.GeoResolver
	Logger   *logrus.Logger
	Timeout  time.Duration
}

func NewEmailProcessor(sender mailer.Sender, resolver mailtpl.GeoResolver, logger *logrus.Logger) *EmailProcessor {
	return &EmailProcessor{Sender: sender, Resolver: resolver, Logger: logger, Timeout: 15 * time.Second}
}

// Process handles one message body. Malformed or unrenderable jobs are dropped;
// send failures are requeued.
func (p *EmailProcessor) Process(ctx context.Context, body []byte) Outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.log().WithError(err).Warn("bad email job")
		return Drop
	}
	if job.To == "" {
		p.log().Warn("email job without recipient")
		return Drop
	}

	subject, text, html, err := p.render(ctx, &job)
	if err != nil {
		p.log().WithError(err).WithField("template", job.Template).Warn("render failed")
		return Drop
	}

	c, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	if err := p.Sender.Send(c, job.To, subject, text, html); err != nil {
		p.log().WithError(err).WithField("to", job.To).Warn("send failed")
		return Requeue
	}
	p.log().WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}

func (p *EmailProcessor) render(ctx context.Context, job *mailer.EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		if job.Subject == "" || (job.Text == "" && job.HTML == "") {
			return "", "", "", ErrEmptyJob
		}
		return job.Subject, job.Text, job.HTML, nil
	}
	helpers.EnsureRecipientAndEmail(job)
	helpers.LocalizeTimesIfPossible(ctx, p.Resolver, job.Data)
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", fmt.Errorf("render %s: %w", job.Template, err)
	}
	return subject, text, html, nil
}

func (p *EmailProcessor) log() *logrus.Logger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
