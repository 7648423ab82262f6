package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	docID := "doc-ttl"
	snap := &domain.Snapshot{
		Nodes:    []domain.Node{{ID: "n1", Type: "action"}},
		Viewport: domain.DefaultViewport(),
	}

	// 1. Save
	err = store.Save(ctx, docID, snap)
	assert.NoError(t, err)

	// 2. Verify List (immediately)
	docs, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, docs, docID)

	// 3. Fast forward time in miniredis (for key expiration)
	mr.FastForward(2 * time.Second)

	// 4. Verify Load (should fail)
	_, err = store.Load(ctx, docID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	// 5. Verify List (lazily cleaned up). The prune score uses time.Now(),
	// so wait past the TTL in wall-clock time too.
	time.Sleep(1200 * time.Millisecond)

	docs, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	docID := "my-doc"

	err = store.Save(ctx, docID, &domain.Snapshot{Viewport: domain.DefaultViewport()})
	assert.NoError(t, err)

	exists := mr.Exists("custom:app:my-doc")
	assert.True(t, exists, "Expected key with custom prefix to exist")

	existsIndex := mr.Exists("custom:app:index")
	assert.True(t, existsIndex, "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, docID)
}
