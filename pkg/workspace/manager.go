// Package workspace coordinates access to multiple named documents.
//
// An espalier.Document is single-writer; the workspace Manager is the
// serialization point hosts use when several callers (HTTP handlers, MCP
// tools, background jobs) need to mutate the same document. It keeps live
// documents in memory so undo history survives across calls, and persists
// snapshots through a ports.SnapshotStore after every successful mutation.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates document access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the maps
	locks map[string]*lockEntry // Map of active locks
	live  map[string]*espalier.Document

	docOpts []espalier.Option       // Options applied to every opened document
	locker  ports.DistributedLocker // Optional distributed locker
	logger  *slog.Logger            // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDocumentOptions sets the options applied to every document the
// Manager opens, such as a connection validator or zoom bounds.
func WithDocumentOptions(opts ...espalier.Option) Option {
	return func(m *Manager) {
		m.docOpts = append(m.docOpts, opts...)
	}
}

// NewManager creates a new workspace Manager backed by the given store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		live:   make(map[string]*espalier.Document),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(docID) after unlocking.
func (m *Manager) acquire(docID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		entry = &lockEntry{}
		m.locks[docID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, docID)
	}
}

// document returns the live document for docID, loading it from the store
// when it is not yet in memory. Must be called while holding the doc lock.
func (m *Manager) document(ctx context.Context, docID string, createIfMissing bool) (*espalier.Document, error) {
	m.mu.Lock()
	doc, ok := m.live[docID]
	m.mu.Unlock()
	if ok {
		return doc, nil
	}

	snap, err := m.store.Load(ctx, docID)
	switch {
	case err == nil:
		doc, err = espalier.FromSnapshot(snap, m.docOpts...)
		if err != nil {
			return nil, fmt.Errorf("stored snapshot for %q is invalid: %w", docID, err)
		}
	case errors.Is(err, domain.ErrDocumentNotFound) && createIfMissing:
		doc = espalier.New(m.docOpts...)
	default:
		return nil, err
	}

	m.mu.Lock()
	m.live[docID] = doc
	m.mu.Unlock()
	return doc, nil
}

// With executes fn against the document, holding its lock, and persists the
// resulting snapshot when fn succeeds. The document is created if absent.
func (m *Manager) With(ctx context.Context, docID string, fn func(*espalier.Document) error) error {
	return m.withLock(ctx, docID, func(ctx context.Context) error {
		doc, err := m.document(ctx, docID, true)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		if err := m.store.Save(ctx, docID, doc.Serialize()); err != nil {
			return fmt.Errorf("failed to persist document: %w", err)
		}
		return nil
	})
}

// View executes fn against an existing document without persisting afterward.
// Returns domain.ErrDocumentNotFound when the document does not exist.
func (m *Manager) View(ctx context.Context, docID string, fn func(*espalier.Document) error) error {
	return m.withLock(ctx, docID, func(ctx context.Context) error {
		doc, err := m.document(ctx, docID, false)
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// Snapshot returns the current snapshot of a document.
func (m *Manager) Snapshot(ctx context.Context, docID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.View(ctx, docID, func(doc *espalier.Document) error {
		snap = doc.Serialize()
		return nil
	})
	return snap, err
}

// Delete removes the document from the store and evicts the live instance.
func (m *Manager) Delete(ctx context.Context, docID string) error {
	return m.withLock(ctx, docID, func(ctx context.Context) error {
		if err := m.store.Delete(ctx, docID); err != nil {
			return err
		}
		m.mu.Lock()
		delete(m.live, docID)
		m.mu.Unlock()
		return nil
	})
}

// Discard evicts the live document without touching the store. The next
// access reloads the persisted snapshot with an empty history.
func (m *Manager) Discard(docID string) {
	m.mu.Lock()
	delete(m.live, docID)
	m.mu.Unlock()
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// withLock executes a function while holding the lock for the document.
func (m *Manager) withLock(ctx context.Context, docID string, fn func(context.Context) error) error {
	entry := m.acquire(docID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(docID)
	}()

	// Distributed Locking
	if m.locker != nil {
		// TODO: Configure TTL?
		unlock, err := m.locker.Lock(ctx, docID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"doc_id", docID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
