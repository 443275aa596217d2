package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AttemptsHeader counts how many times a job has failed to send.
const AttemptsHeader = "x-attempts"

const maxRetryDelay = time.Minute

// Republisher is the publishing half of *amqp.Channel.
type Republisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Consumer settles deliveries from the email queue. Failed sends are
// republished with AttemptsHeader incremented after a backoff, and dropped
// once MaxAttempts is reached.
type Consumer struct {
	Proc        *EmailProcessor
	Pub         Republisher
	Queue       string
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewConsumer(proc *EmailProcessor, pub Republisher, queue string, maxAttempts int, retryDelay time.Duration, logger *logrus.Logger) *Consumer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Consumer{
		Proc:        proc,
		Pub:         pub,
		Queue:       queue,
		MaxAttempts: maxAttempts,
		RetryDelay:  retryDelay,
		Logger:      logger,
		sleep:       sleepCtx,
	}
}

// Handle processes one delivery and acks, drops or reschedules it.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	switch c.Proc.Process(ctx, d.Body) {
	case Ack:
		_ = d.Ack(false)
	case Drop:
		_ = d.Nack(false, false)
	case Requeue:
		c.retry(ctx, d)
	}
}

func (c *Consumer) retry(ctx context.Context, d amqp.Delivery) {
	attempt := Attempts(d.Headers) + 1
	log := c.log().WithFields(logrus.Fields{"attempt": attempt, "max_attempts": c.MaxAttempts})
	if attempt >= c.MaxAttempts {
		log.Warn("email job exhausted retries; dropping")
		_ = d.Nack(false, false)
		return
	}

	if err := c.sleep(ctx, Backoff(c.RetryDelay, attempt)); err != nil {
		_ = d.Nack(false, true)
		return
	}

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[AttemptsHeader] = int32(attempt)

	err := c.Pub.PublishWithContext(ctx, "", c.Queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         d.Body,
	})
	if err != nil {
		log.WithError(err).Warn("republish failed; requeueing")
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// ConsumerTag returns a unique tag for Channel.Consume, so the same tag can be
// passed to Channel.Cancel on shutdown.
func ConsumerTag(app string) string {
	return app + "-email-worker-" + uuid.NewString()
}

// Attempts reads AttemptsHeader, treating a missing or malformed value as zero.
func Attempts(h amqp.Table) int {
	switch v := h[AttemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	}
	return 0
}

// Backoff doubles base per attempt, capped at one minute.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt < 1 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Consumer) log() *logrus.Logger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
