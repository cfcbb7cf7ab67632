// Package resilience composes the circuit breaker and retry engine into the
// single call surface route handlers and background jobs use for risky work.
package resilience

import (
	"context"

	"github.com/flowsend/aegis/internal/resilience/breaker"
	"github.com/flowsend/aegis/internal/resilience/retry"
)

// Guard wraps a unit of work in a circuit breaker around the retry engine:
// the breaker rejects fast while a service is down, the retry engine absorbs
// transient failures while it is up.
type Guard struct {
	breakers *breaker.Registry
}

// NewGuard creates a guard over the given breaker registry.
func NewGuard(breakers *breaker.Registry) *Guard {
	return &Guard{breakers: breakers}
}

// Breakers exposes the registry for observability and operator resets.
func (g *Guard) Breakers() *breaker.Registry {
	return g.breakers
}

// Call executes work for a service under the given retry policy, guarded by
// the service's breaker.
func (g *Guard) Call(ctx context.Context, service string, policy retry.Policy, work retry.Work) (any, error) {
	b := g.breakers.Get(service)
	return b.Execute(ctx, func(ctx context.Context) (any, error) {
		return retry.Do(ctx, policy, work)
	})
}

// CallProvider guards a messaging-provider call with the provider preset.
func (g *Guard) CallProvider(ctx context.Context, work retry.Work) (any, error) {
	return g.Call(ctx, breaker.ServiceProviderAPI, retry.ProviderAPIPolicy, work)
}

// CallAI guards an AI inference call with the AI preset.
func (g *Guard) CallAI(ctx context.Context, work retry.Work) (any, error) {
	return g.Call(ctx, breaker.ServiceAI, retry.AIInferencePolicy, work)
}

// CallDatabase guards a database operation with the database preset.
func (g *Guard) CallDatabase(ctx context.Context, work retry.Work) (any, error) {
	return g.Call(ctx, breaker.ServiceDatabase, retry.DatabasePolicy, work)
}
