package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/inferschema/pkg/adapters/redis"
	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunDefinitionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	def := schema.Definition{Name: "Ephemeral", Fields: []schema.FieldDefinition{{Name: "x", Type: "int"}}}

	require.NoError(t, store.Save(ctx, def))

	names, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, names, "Ephemeral")

	// Key expiration is driven by miniredis' clock
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "Ephemeral")
	assert.ErrorIs(t, err, ports.ErrDefinitionNotFound)

	// Index pruning uses time.Now(), so wait past the TTL.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	err := store.Save(ctx, schema.Definition{Name: "Voice", Fields: []schema.FieldDefinition{}})
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:Voice"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Voice"}, list)

	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"Broken", "{not json"))

	_, err := store.Load(context.Background(), "Broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrDefinitionNotFound)
}
