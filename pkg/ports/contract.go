package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDefinitionStoreContract runs a suite of tests to verify that a
// DefinitionStore implementation adheres to the interface contract.
func RunDefinitionStoreContract(t *testing.T, store DefinitionStore) {
	ctx := context.Background()
	name := "Contract_" + time.Now().Format("20060102150405")

	def := schema.Definition{
		Name: name,
		Doc:  "Contract record",
		Fields: []schema.FieldDefinition{
			{Name: "inputs", Type: "string", Required: true, Doc: "The input text"},
			{Name: "mode", Type: `bool | "never"`},
			{Name: "stop", Type: "[string]"},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, def), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, def, loaded)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		updated := def
		updated.Doc = "Updated"
		updated.Fields = append([]schema.FieldDefinition(nil), def.Fields[:1]...)
		require.NoError(t, store.Save(ctx, updated))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, updated, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "Missing_"+name)
		assert.ErrorIs(t, err, ErrDefinitionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := fmt.Sprintf("%s_2", name)
		require.NoError(t, store.Save(ctx, schema.Definition{Name: other, Fields: []schema.FieldDefinition{}}))
		defer func() { _ = store.Delete(ctx, other) }()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, other)
		assert.IsNonDecreasing(t, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, ErrDefinitionNotFound, "Load after Delete should return ErrDefinitionNotFound")

		assert.NoError(t, store.Delete(ctx, name), "Delete is idempotent")
	})
}
