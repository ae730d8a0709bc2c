// Package resilience wraps external-dependency calls with fault tolerance
// patterns so a struggling store never blocks a request past its deadline.
package resilience

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrStoreUnavailable is returned by a tripped breaker in place of the
// underlying store error, so callers can map it onto the EAS-level
// StoreUnavailable status (spec §7) without inspecting driver internals.
var ErrStoreUnavailable = errors.New("resilience: store circuit open")

// StoreBreaker wraps a gobreaker.CircuitBreaker around calls to the external
// mailbox store (port/out.Store). Sync is synchronous apart from the store
// I/O call (spec §5); a store that hangs or errors repeatedly must fail fast
// rather than hold the per-request deadline open.
type StoreBreaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewStoreBreaker builds a breaker named for the store dependency it guards
// (e.g. "postgres-collection-state", "mongo-item-body").
func NewStoreBreaker(name string) *StoreBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
	}
	return &StoreBreaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Do executes fn through the breaker. When the breaker is open it returns
// ErrStoreUnavailable immediately without calling fn.
func (b *StoreBreaker) Do(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrStoreUnavailable
	}
	return result, err
}

// State reports the breaker's current state for health/diagnostic endpoints.
func (b *StoreBreaker) State() gobreaker.State {
	return b.cb.State()
}
