package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
)

type readOnlyMiddleware struct {
	passthrough
}

// NewReadOnlyMiddleware creates a middleware that rejects Save and Delete
// with ports.ErrReadOnly. Use it to serve a shared definitions directory
// without letting clients change it.
func NewReadOnlyMiddleware() Middleware {
	return func(next ports.DefinitionStore) ports.DefinitionStore {
		return &readOnlyMiddleware{passthrough{next}}
	}
}

func (m *readOnlyMiddleware) Save(_ context.Context, def schema.Definition) error {
	return fmt.Errorf("save %s: %w", def.Name, ports.ErrReadOnly)
}

func (m *readOnlyMiddleware) Delete(_ context.Context, name string) error {
	return fmt.Errorf("delete %s: %w", name, ports.ErrReadOnly)
}
