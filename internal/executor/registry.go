package executor

import (
	"fmt"
	"log"
	"sort"

	"github.com/quantfoundry/vantage/pkg/models"
)

// Registry maps executor kinds to providers. Kinds are plain strings
// so plans may name kinds the binary has never heard of; Resolve maps
// those onto the default kind instead of rejecting the plan.
type Registry struct {
	providers   map[string]Provider
	defaultKind string
}

// NewRegistry returns an empty registry whose unknown-kind fallback is
// the data collector.
func NewRegistry() *Registry {
	return &Registry{
		providers:   make(map[string]Provider),
		defaultKind: models.KindDataCollector,
	}
}

// Register binds a provider to a kind, replacing any previous binding.
func (r *Registry) Register(kind string, p Provider) {
	r.providers[kind] = p
}

// Resolve returns the provider for a kind. Unknown kinds fall back to
// the default kind with a warning; a missing default is a wiring bug
// and is returned as an error.
func (r *Registry) Resolve(kind string) (Provider, error) {
	if p, ok := r.providers[kind]; ok {
		return p, nil
	}
	fallback, ok := r.providers[r.defaultKind]
	if !ok {
		return nil, fmt.Errorf("no provider registered for kind %q and no %q default", kind, r.defaultKind)
	}
	log.Printf("[registry] unknown executor kind %q, using %q", kind, r.defaultKind)
	return fallback, nil
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
