package clients

import (
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// newCircuitBreaker trips after at least three requests with a failure
// ratio of 60% or more.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker[*resty.Response] {
	var st gobreaker.Settings
	st.Name = name
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
	}

	return gobreaker.NewCircuitBreaker[*resty.Response](st)
}
