package kafka_test

import (
	"testing"

	"storefront/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	_, err := kafka.NewProducer(kafka.Config{Topic: "order-events"})
	assert.Error(t, err)

	_, err = kafka.NewProducer(kafka.Config{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)

	p, err := kafka.NewProducer(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "order-events"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
