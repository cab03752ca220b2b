package queue

import (
	"context"
	"errors"
	"testing"

	"baluarte/apperr"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func newDelivery(t *testing.T, ack *fakeAcknowledger, redelivered bool) amqp091.Delivery {
	body, err := NewPaymentNotificationMessage("987", "payment", "req-1").ToJSON()
	require.NoError(t, err)
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body, Redelivered: redelivered}
}

func TestPaymentNotificationMessage_JSON(t *testing.T) {
	msg := NewPaymentNotificationMessage("123", "payment", "abc")
	assert.False(t, msg.Timestamp.IsZero())

	raw, err := msg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"paymentId":"123"`)

	parsed, err := PaymentNotificationMessageFromJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, msg.PaymentID, parsed.PaymentID)
	assert.Equal(t, msg.Topic, parsed.Topic)
	assert.True(t, msg.Timestamp.Equal(parsed.Timestamp))

	_, err = PaymentNotificationMessageFromJSON([]byte("{invalid"))
	assert.Error(t, err)
}

func TestHandleDelivery_Success(t *testing.T) {
	ack := &fakeAcknowledger{}
	var got *PaymentNotificationMessage

	handleDelivery(context.Background(), newDelivery(t, ack, false), func(ctx context.Context, msg *PaymentNotificationMessage) error {
		got = msg
		return nil
	}, zerolog.Nop())

	require.NotNil(t, got)
	assert.Equal(t, "987", got.PaymentID)
	assert.Equal(t, "req-1", got.RequestID)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDelivery_Malformed(t *testing.T) {
	ack := &fakeAcknowledger{}
	called := false

	handleDelivery(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte("nope")}, func(ctx context.Context, msg *PaymentNotificationMessage) error {
		called = true
		return nil
	}, zerolog.Nop())

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestHandleDelivery_Failures(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		redelivered bool
		requeue     bool
	}{
		{"gateway down requeues", apperr.Upstream(500, "gateway", errors.New("timeout")), false, true},
		{"unknown error requeues", errors.New("db gone"), false, true},
		{"second failure is dropped", errors.New("db gone"), true, false},
		{"missing user is dropped", apperr.NotFound("Usuario no encontrado."), false, false},
		{"bad reference is dropped", apperr.Validation("referencia"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			handleDelivery(context.Background(), newDelivery(t, ack, tt.redelivered), func(ctx context.Context, msg *PaymentNotificationMessage) error {
				return tt.err
			}, zerolog.Nop())

			assert.False(t, ack.acked)
			assert.True(t, ack.nacked)
			assert.Equal(t, tt.requeue, ack.requeue)
		})
	}
}
