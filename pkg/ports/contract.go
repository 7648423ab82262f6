package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a
// SnapshotStore implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	sample := func() *domain.Snapshot {
		return &domain.Snapshot{
			Nodes: []domain.Node{
				{ID: "n1", Type: "action", Title: "First", Position: domain.Position{X: 10, Y: 20},
					Configuration: map[string]string{"command": "echo hi"}},
				{ID: "n2", Type: "output", Position: domain.Position{X: 200, Y: 20}},
			},
			Connections: []domain.Connection{
				{ID: "c1", SourceNodeID: "n1", SourcePortID: "out", TargetNodeID: "n2", TargetPortID: "in"},
			},
			Viewport: domain.Viewport{PanX: 5, PanY: -5, Zoom: 1.5},
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := sample()
		err := store.Save(ctx, docID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap, loaded)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, sample()))

		first, err := store.Load(ctx, docID)
		require.NoError(t, err)
		first.Nodes[0].Title = "mutated"
		first.Nodes[0].Configuration["command"] = "mutated"

		second, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Equal(t, "First", second.Nodes[0].Title, "stored snapshot must not observe caller mutations")
		assert.Equal(t, "echo hi", second.Nodes[0].Configuration["command"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, docID, sample()))

		err := store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, sample())
		_ = store.Save(ctx, id2, sample())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, docs, id1)
		assert.Contains(t, docs, id2)
	})
}
