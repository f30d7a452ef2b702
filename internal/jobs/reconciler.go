package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// StaleOrderCanceller cancels orders that never completed payment.
type StaleOrderCanceller interface {
	CancelStaleOrders(ctx context.Context) (int, error)
}

// StartOrderReconciler runs canceller every interval until the returned
// scheduler is shut down. A run that is still going when the next one is
// due delays that next run.
func StartOrderReconciler(canceller StaleOrderCanceller, interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := canceller.CancelStaleOrders(context.Background()); err != nil {
				log.Error().Err(err).Msg("stale order reconciliation failed")
			}
		}),
		gocron.WithName("cancel-stale-orders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule stale order reconciliation: %w", err)
	}

	s.Start()
	log.Info().Dur("interval", interval).Msg("order reconciler started")
	return s, nil
}
