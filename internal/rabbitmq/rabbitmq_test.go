package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"jobportal/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func delivery(t *testing.T, body []byte, redelivered bool) (amqp.Delivery, *ackRecorder) {
	t.Helper()

	rec := &ackRecorder{}

	return amqp.Delivery{
		Acknowledger: rec,
		DeliveryTag:  1,
		Body:         body,
		Redelivered:  redelivered,
	}, rec
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)

	return b
}

func TestProcess_Success(t *testing.T) {
	msg := models.Message{Email: "a@x.com", Purpose: models.PurposePasswordReset, Link: "http://x/reset/tok"}
	d, rec := delivery(t, mustJSON(t, msg), false)

	var got models.Message
	process(context.Background(), discard(), d, func(_ context.Context, m models.Message) error {
		got = m
		return nil
	})

	assert.Equal(t, msg, got)
	assert.True(t, rec.acked)
	assert.False(t, rec.nacked)
}

func TestProcess_BadPayloadIsDropped(t *testing.T) {
	d, rec := delivery(t, []byte("{not json"), false)

	called := false
	process(context.Background(), discard(), d, func(context.Context, models.Message) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, rec.nacked)
	assert.False(t, rec.requeue)
}

func TestProcess_HandlerFailureRequeuesOnce(t *testing.T) {
	fail := func(context.Context, models.Message) error { return errors.New("smtp down") }
	body := mustJSON(t, models.Message{Email: "a@x.com"})

	first, rec := delivery(t, body, false)
	process(context.Background(), discard(), first, fail)
	assert.True(t, rec.nacked)
	assert.True(t, rec.requeue)

	second, rec := delivery(t, body, true)
	process(context.Background(), discard(), second, fail)
	assert.True(t, rec.nacked)
	assert.False(t, rec.requeue)
}
