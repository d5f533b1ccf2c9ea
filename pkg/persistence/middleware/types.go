package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/inferschema/pkg/ports"
)

// Middleware allows wrapping a DefinitionStore to add behavior.
type Middleware func(ports.DefinitionStore) ports.DefinitionStore

// Chain applies middlewares so that the first one is outermost.
func Chain(store ports.DefinitionStore, mws ...Middleware) ports.DefinitionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// passthrough forwards the optional store capabilities so that wrapping a
// store does not hide them from the catalog or the health check.
type passthrough struct {
	ports.DefinitionStore
}

// Watch implements ports.Watchable when the wrapped store does.
func (p passthrough) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := p.DefinitionStore.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("wrapped store does not support watching")
	}
	return w.Watch(ctx)
}

// Ping reports the wrapped store's connectivity, or nil when it has none.
func (p passthrough) Ping(ctx context.Context) error {
	if pinger, ok := p.DefinitionStore.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}
