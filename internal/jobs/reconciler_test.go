package jobs_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCanceller struct {
	runs atomic.Int32
}

func (c *countingCanceller) CancelStaleOrders(context.Context) (int, error) {
	c.runs.Add(1)
	return 0, nil
}

func TestStartOrderReconciler_RunsPeriodically(t *testing.T) {
	canceller := &countingCanceller{}

	s, err := jobs.StartOrderReconciler(canceller, 20*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return canceller.runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())

	// No runs after shutdown.
	after := canceller.runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, canceller.runs.Load())
}
