package ports

import (
	"context"
	"errors"

	"github.com/aretw0/inferschema/pkg/schema"
)

var (
	// ErrDefinitionNotFound is returned when no definition is stored under a name.
	ErrDefinitionNotFound = errors.New("definition not found")

	// ErrReadOnly is returned by stores that refuse writes.
	ErrReadOnly = errors.New("definition store is read-only")
)

// DefinitionStore persists record definitions registered at runtime.
type DefinitionStore interface {
	// Save stores def under def.Name, replacing any previous version.
	Save(ctx context.Context, def schema.Definition) error

	// Load retrieves a definition by record name.
	// Returns ErrDefinitionNotFound if nothing is stored under name.
	Load(ctx context.Context, name string) (schema.Definition, error)

	// Delete removes a definition. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored definitions, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable is implemented by stores that can be changed by other writers,
// such as a directory edited by hand.
type Watchable interface {
	// Watch returns a channel that receives the name of each changed
	// definition. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
