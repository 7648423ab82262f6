package ports

import (
	"context"

	"github.com/aretw0/espalier/pkg/domain"
)

// SnapshotStore defines the interface for persisting document snapshots.
// Persistence is entirely the host's concern; the document core itself only
// ever produces and consumes domain.Snapshot values.
type SnapshotStore interface {
	// Save persists the snapshot for a given document ID.
	Save(ctx context.Context, docID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given document ID.
	// Returns domain.ErrDocumentNotFound if the document does not exist.
	Load(ctx context.Context, docID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given document ID.
	Delete(ctx context.Context, docID string) error

	// List returns the stored document IDs.
	List(ctx context.Context) ([]string, error)
}
