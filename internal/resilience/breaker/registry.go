package breaker

import (
	"log/slog"
	"sync"
)

// Guarded service names.
const (
	ServiceProviderAPI = "provider_api"
	ServiceAI          = "ai"
	ServiceDatabase    = "database"
)

// Registry owns the per-service breaker instances. It is constructed once by
// the control layer and injected wherever guarded calls are issued; breaker
// lifetime equals process lifetime.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

// NewRegistry creates a registry pre-populated with the standard service
// breakers.
func NewRegistry() *Registry {
	r := &Registry{breakers: make(map[string]*Breaker)}
	r.add(New(ServiceProviderAPI, ProviderAPISettings))
	r.add(New(ServiceAI, AISettings))
	r.add(New(ServiceDatabase, DatabaseSettings))
	return r
}

func (r *Registry) add(b *Breaker) {
	r.breakers[b.Name()] = b
}

// Get returns the breaker for a service, creating one with provider-API
// settings for services registered lazily. Lazy creation is logged loudly: a
// name outside the standard set is usually a typo at the call site.
func (r *Registry) Get(service string) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[service]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[service]; ok {
		return b
	}
	slog.Warn("Creating breaker for unregistered service, check the service name",
		"service", service)
	b = New(service, ProviderAPISettings)
	r.breakers[service] = b
	return b
}

// States returns a snapshot of every breaker's state, keyed by service name.
func (r *Registry) States() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.State().String()
	}
	return out
}
