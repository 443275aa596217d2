package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
)

type settled struct {
	acked, nacked, requeued bool
}

func (s *settled) Ack(uint64, bool) error { s.acked = true; return nil }
func (s *settled) Nack(_ uint64, _ bool, requeue bool) error {
	s.nacked = true
	s.requeued = requeue
	return nil
}
func (s *settled) Reject(_ uint64, requeue bool) error { return s.Nack(0, false, requeue) }

type fakeRepublisher struct {
	msgs []amqp.Publishing
	keys []string
	err  error
}

func (f *fakeRepublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.msgs = append(f.msgs, msg)
	return nil
}

func newConsumer(s mailer.Sender, pub Republisher) (*Consumer, *[]time.Duration) {
	logger, _ := logtest.NewNullLogger()
	c := NewConsumer(newProcessor(s), pub, "emails", 3, time.Second, logger)
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return c, &slept
}

func delivery(t *testing.T, ack *settled, headers amqp.Table) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		ContentType:  "application/json",
		Headers:      headers,
		Body:         mustJSON(t, mailer.EmailJob{To: "a@example.com", Subject: "Hi", Text: "hello"}),
	}
}

func TestConsumer_AcksSent(t *testing.T) {
	pub := &fakeRepublisher{}
	c, _ := newConsumer(&fakeSender{}, pub)
	ack := &settled{}

	c.Handle(context.Background(), delivery(t, ack, nil))
	assert.True(t, ack.acked)
	assert.Empty(t, pub.msgs)
}

func TestConsumer_DropsMalformed(t *testing.T) {
	c, _ := newConsumer(&fakeSender{}, &fakeRepublisher{})
	ack := &settled{}

	c.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(`{"to":`)})
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
}

func TestConsumer_SendFailureRepublishesWithBackoff(t *testing.T) {
	pub := &fakeRepublisher{}
	c, slept := newConsumer(&fakeSender{err: errors.New("mailgun 503")}, pub)
	ack := &settled{}

	c.Handle(context.Background(), delivery(t, ack, amqp.Table{AttemptsHeader: int32(1)}))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, []string{"emails"}, pub.keys)
	assert.Equal(t, int32(2), pub.msgs[0].Headers[AttemptsHeader])
	assert.Equal(t, amqp.Persistent, pub.msgs[0].DeliveryMode)
	assert.Equal(t, []time.Duration{2 * time.Second}, *slept)
}

func TestConsumer_GivesUpAfterMaxAttempts(t *testing.T) {
	pub := &fakeRepublisher{}
	c, slept := newConsumer(&fakeSender{err: errors.New("mailgun 503")}, pub)
	ack := &settled{}

	c.Handle(context.Background(), delivery(t, ack, amqp.Table{AttemptsHeader: int32(2)}))

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.Empty(t, pub.msgs)
	assert.Empty(t, *slept)
}

func TestConsumer_RepublishFailureRequeues(t *testing.T) {
	pub := &fakeRepublisher{err: errors.New("channel closed")}
	c, _ := newConsumer(&fakeSender{err: errors.New("mailgun 503")}, pub)
	ack := &settled{}

	c.Handle(context.Background(), delivery(t, ack, nil))
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
}

func TestConsumer_ShutdownDuringBackoffRequeues(t *testing.T) {
	pub := &fakeRepublisher{}
	c, _ := newConsumer(&fakeSender{err: errors.New("mailgun 503")}, pub)
	ack := &settled{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Handle(ctx, delivery(t, ack, nil))

	assert.True(t, ack.requeued)
	assert.Empty(t, pub.msgs)
}

func TestConsumerTag(t *testing.T) {
	a, b := ConsumerTag("registry"), ConsumerTag("registry")
	assert.True(t, strings.HasPrefix(a, "registry-email-worker-"))
	assert.NotEqual(t, a, b)
}

func TestAttempts(t *testing.T) {
	assert.Equal(t, 0, Attempts(nil))
	assert.Equal(t, 0, Attempts(amqp.Table{AttemptsHeader: "3"}))
	assert.Equal(t, 3, Attempts(amqp.Table{AttemptsHeader: int32(3)}))
	assert.Equal(t, 4, Attempts(amqp.Table{AttemptsHeader: int64(4)}))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Second, Backoff(time.Second, 1))
	assert.Equal(t, 4*time.Second, Backoff(time.Second, 3))
	assert.Equal(t, time.Minute, Backoff(time.Second, 10))
	assert.Zero(t, Backoff(0, 3))
}
