// Package events publishes and audits order lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// Order event types.
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderPaymentFailed = "order.payment_failed"
	TypeOrderCancelled     = "order.cancelled"
)

// OrderEvent is the payload written to the broker.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uint64    `json:"orderId"`
	ProductID   uint64    `json:"productId"`
	Quantity    int64     `json:"quantity"`
	Amount      float64   `json:"amount"`
	PaymentMode string    `json:"paymentMode"`
	OrderStatus string    `json:"orderStatus"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// NewOrderEvent builds an event of eventType from the current state of o.
func NewOrderEvent(eventType string, o models.Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     o.OrderID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		Amount:      o.Amount,
		PaymentMode: o.PaymentMode,
		OrderStatus: o.OrderStatus,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher sends order events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// Sink is a broker client able to deliver raw message bodies.
// *rabbitmq.Client and *kafka.Producer both satisfy it.
type Sink interface {
	Publish(ctx context.Context, eventType, key string, body []byte) error
	Close() error
}

// BrokerPublisher encodes events as JSON and hands them to a Sink, keyed by
// order id.
type BrokerPublisher struct {
	sink Sink
}

func NewBrokerPublisher(sink Sink) *BrokerPublisher {
	return &BrokerPublisher{sink: sink}
}

func (p *BrokerPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}
	if err := p.sink.Publish(ctx, event.Type, strconv.FormatUint(event.OrderID, 10), body); err != nil {
		return fmt.Errorf("failed to publish %s for order %d: %w", event.Type, event.OrderID, err)
	}
	return nil
}

func (p *BrokerPublisher) Close() error {
	return p.sink.Close()
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event OrderEvent) error {
	log.Ctx(ctx).Debug().Str("type", event.Type).Uint64("order_id", event.OrderID).Msg("event broker disabled, dropping event")
	return nil
}

func (NopPublisher) Close() error { return nil }

// AuditOrderEvent logs a consumed order event. Malformed messages are logged
// and acknowledged so they are not redelivered forever.
func AuditOrderEvent(msg amqp.Delivery) error {
	var event OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("discarding malformed order event")
		return nil
	}
	log.Info().
		Str("type", event.Type).
		Uint64("order_id", event.OrderID).
		Uint64("product_id", event.ProductID).
		Int64("quantity", event.Quantity).
		Float64("amount", event.Amount).
		Str("order_status", event.OrderStatus).
		Time("occurred_at", event.OccurredAt).
		Msg("order event audited")
	return nil
}
