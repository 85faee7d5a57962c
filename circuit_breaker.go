package reply

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// NewBreakerConfig returns a factory that creates one circuit breaker per
// downstream endpoint. A breaker trips once at least three requests have
// been observed in the interval and 60% of them failed.
func NewBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(addr string) *gobreaker.CircuitBreaker[Reply] {
	return func(addr string) *gobreaker.CircuitBreaker[Reply] {
		settings := gobreaker.Settings{
			Name:        addr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[Reply](settings)
	}
}
