package espalier

import (
	"log/slog"

	"github.com/aretw0/espalier/internal/editor"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
)

// Version is the library version, stamped by the release workflow.
var Version = "0.4.0"

// Document is the high-level entry point for the Espalier library.
// It wraps the internal editor and provides the document API for hosts:
// mutations, selection, viewport, history, serialization, and observation.
//
// A Document is single-writer: all mutations must arrive from one
// logical thread (the UI event loop). See pkg/workspace for the serialization
// point multi-caller hosts need.
type Document struct {
	core *editor.Document
	opts []editor.Option
}

// Option defines a functional option for configuring a Document.
type Option func(*Document)

// WithLogger sets a custom structured logger for the document.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		d.opts = append(d.opts, editor.WithLogger(logger))
	}
}

// WithZoomBounds overrides the [min, max] zoom clamp range (default 0.25–4).
func WithZoomBounds(min, max float64) Option {
	return func(d *Document) {
		d.opts = append(d.opts, editor.WithZoomBounds(min, max))
	}
}

// WithZoomStep overrides the multiplicative zoom step (default 1.25).
func WithZoomStep(step float64) Option {
	return func(d *Document) {
		d.opts = append(d.opts, editor.WithZoomStep(step))
	}
}

// WithConnectionValidator delegates port compatibility checks for Connect to
// the given schema collaborator, typically a *registry.Registry.
func WithConnectionValidator(v ports.ConnectionValidator) Option {
	return func(d *Document) {
		d.opts = append(d.opts, editor.WithConnectionValidator(v))
	}
}

// WithAcyclic makes Connect reject self-loops and cycle-closing edges.
func WithAcyclic() Option {
	return func(d *Document) {
		d.opts = append(d.opts, editor.WithAcyclic())
	}
}

// WithIDGenerator overrides the generator used for omitted node and
// connection ids (default: random UUIDs).
func WithIDGenerator(gen func() string) Option {
	return func(d *Document) {
		d.opts = append(d.opts, editor.WithIDGenerator(gen))
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{}
	for _, opt := range opts {
		opt(d)
	}
	d.core = editor.New(d.opts...)
	return d
}

// FromSnapshot creates a document pre-loaded with the given snapshot.
// The snapshot is validated; history starts empty.
func FromSnapshot(snap *domain.Snapshot, opts ...Option) (*Document, error) {
	d := New(opts...)
	if err := d.Load(snap); err != nil {
		return nil, err
	}
	return d, nil
}

// --- Mutations ---

// AddNode inserts a new node, generating an id when the caller omits one.
// Fails with domain.ErrDuplicateID on collision.
func (d *Document) AddNode(n domain.Node) (domain.Node, error) { return d.core.AddNode(n) }

// RemoveNode removes a node and cascades removal of its connections as one
// undo unit. Fails with domain.ErrNodeNotFound.
func (d *Document) RemoveNode(id string) error { return d.core.RemoveNode(id) }

// UpdateNode applies a partial update; the inverse restores prior values.
func (d *Document) UpdateNode(id string, patch domain.NodePatch) error {
	return d.core.UpdateNode(id, patch)
}

// Connect creates a connection between two node ports.
func (d *Document) Connect(sourceID, sourcePort, targetID, targetPort string) (domain.Connection, error) {
	return d.core.Connect(sourceID, sourcePort, targetID, targetPort)
}

// Disconnect removes a connection.
func (d *Document) Disconnect(connectionID string) error { return d.core.Disconnect(connectionID) }

// RemoveSelected removes every selected node as a single history entry.
func (d *Document) RemoveSelected() error { return d.core.RemoveSelected() }

// --- Selection (transient, not undoable) ---

// SelectNode replaces the selection with {id} when exclusive, otherwise
// toggles membership. Unknown ids are a silent no-op.
func (d *Document) SelectNode(id string, exclusive bool) { d.core.SelectNode(id, exclusive) }

// SelectAll selects every node.
func (d *Document) SelectAll() { d.core.SelectAll() }

// ClearSelection empties the selection.
func (d *Document) ClearSelection() { d.core.ClearSelection() }

// --- History ---

// Undo reverts the most recent mutating action, if any.
func (d *Document) Undo() { d.core.Undo() }

// Redo re-applies the most recently undone action, if any.
func (d *Document) Redo() { d.core.Redo() }

// CanUndo reports whether an undo entry is available.
func (d *Document) CanUndo() bool { return d.core.CanUndo() }

// CanRedo reports whether a redo entry is available.
func (d *Document) CanRedo() bool { return d.core.CanRedo() }

// --- Viewport (camera state, not undoable) ---

// Pan shifts the viewport offset.
func (d *Document) Pan(dx, dy float64) { d.core.Pan(dx, dy) }

// ZoomIn zooms in by one step, clamped to the configured bounds.
func (d *Document) ZoomIn() { d.core.ZoomIn() }

// ZoomOut zooms out by one step, clamped to the configured bounds.
func (d *Document) ZoomOut() { d.core.ZoomOut() }

// SetZoom sets the zoom scale, clamped to the configured bounds.
func (d *Document) SetZoom(scale float64) { d.core.SetZoom(scale) }

// ResetView restores the identity camera transform.
func (d *Document) ResetView() { d.core.ResetView() }

// --- Queries ---

// Nodes returns the nodes in canvas order (copies).
func (d *Document) Nodes() []domain.Node { return d.core.Nodes() }

// Node returns the node with the given id.
func (d *Document) Node(id string) (domain.Node, error) { return d.core.Node(id) }

// Connections returns the connections in insertion order.
func (d *Document) Connections() []domain.Connection { return d.core.Connections() }

// Connection returns the connection with the given id.
func (d *Document) Connection(id string) (domain.Connection, error) { return d.core.Connection(id) }

// SelectedNodeIDs returns the selected node ids, sorted.
func (d *Document) SelectedNodeIDs() []string { return d.core.SelectedNodeIDs() }

// HasSelection reports whether any node is selected.
func (d *Document) HasSelection() bool { return d.core.HasSelection() }

// Viewport returns the current camera transform.
func (d *Document) Viewport() domain.Viewport { return d.core.Viewport() }

// --- Serialization ---

// Serialize produces a structural snapshot suitable for JSON encoding.
func (d *Document) Serialize() *domain.Snapshot { return d.core.Serialize() }

// Load replaces the full document state with the snapshot and resets the
// history stacks and selection. Not itself undoable.
func (d *Document) Load(snap *domain.Snapshot) error { return d.core.Load(snap) }

// --- Observation ---

// Subscribe registers an observer called after every mutation; the returned
// function cancels the subscription.
func (d *Document) Subscribe(fn func(domain.Event)) func() { return d.core.Subscribe(fn) }
