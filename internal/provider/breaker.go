package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/zdevelops1/goliath/pkg/types"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejects
// calls to prevent hammering a failing upstream API.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// breaker wraps gobreaker around a single backend's HTTP calls.
//
// Closed passes calls through. After three consecutive failures the circuit
// opens and every call fails immediately with ErrCircuitOpen. After 30s it
// half-opens and lets two probe calls through; two successes close it again.
type breaker struct {
	cb *gobreaker.CircuitBreaker
}

func newBreaker(name string) *breaker {
	return &breaker{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 2,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// execute runs fn through the breaker. A context already cancelled before the
// call counts as a failure without reaching the upstream API.
func (b *breaker) execute(ctx context.Context, fn func() (*types.ModelResponse, error)) (*types.ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result.(*types.ModelResponse), nil
}
