package rabbitmq_test

import (
	"errors"
	"testing"

	"storefront/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type recordingAcknowledger struct {
	acked    []uint64
	nacked   []uint64
	requeued bool
}

func (r *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	r.acked = append(r.acked, tag)
	return nil
}

func (r *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	r.nacked = append(r.nacked, tag)
	r.requeued = requeue
	return nil
}

func (r *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	ack := &recordingAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: []byte(`{}`)}

	rabbitmq.HandleDelivery(msg, func(amqp.Delivery) error { return nil })

	assert.Equal(t, []uint64{7}, ack.acked)
	assert.Empty(t, ack.nacked)
}

func TestHandleDelivery_RequeuesOnFailure(t *testing.T) {
	ack := &recordingAcknowledger{}
	msg := amqp.Delivery{Acknowledger: ack, DeliveryTag: 9}

	rabbitmq.HandleDelivery(msg, func(amqp.Delivery) error { return errors.New("audit store down") })

	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{9}, ack.nacked)
	assert.True(t, ack.requeued)
}
