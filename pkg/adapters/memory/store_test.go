package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/inferschema/pkg/adapters/memory"
	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDefinitionStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	def := schema.Definition{Name: "Voice", Fields: []schema.FieldDefinition{{Name: "id", Type: "string"}}}
	require.NoError(t, store.Save(ctx, def))
	def.Fields[0].Type = "int"

	loaded, err := store.Load(ctx, "Voice")
	require.NoError(t, err)
	assert.Equal(t, "string", loaded.Fields[0].Type)

	loaded.Fields[0].Type = "bool"
	again, err := store.Load(ctx, "Voice")
	require.NoError(t, err)
	assert.Equal(t, "string", again.Fields[0].Type)
}

func TestNewFromDefinitions(t *testing.T) {
	store, err := memory.NewFromDefinitions(
		schema.Definition{Name: "A", Fields: []schema.FieldDefinition{{Name: "x", Type: "int"}}},
		schema.Definition{Name: "B", Fields: []schema.FieldDefinition{{Name: "a", Type: "A"}}},
	)
	require.NoError(t, err)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names)

	_, err = memory.NewFromDefinitions(schema.Definition{Name: "bad name"})
	assert.Error(t, err)
}
