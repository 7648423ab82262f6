package editor

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/ports"
	"github.com/google/uuid"
)

// Zoom defaults. SetZoom clamps into [minZoom, maxZoom]; ZoomIn/ZoomOut
// multiply or divide by the step.
const (
	DefaultMinZoom  = 0.25
	DefaultMaxZoom  = 4.0
	DefaultZoomStep = 1.25
)

// Document is the single source of truth for one workflow graph instance:
// nodes, connections, selection, viewport and the undo/redo history.
//
// It is intentionally not safe for concurrent use. All mutations are expected
// to arrive from a single logical UI thread; multi-caller hosts must add
// their own serialization point (see pkg/workspace).
type Document struct {
	nodes       []domain.Node
	connections []domain.Connection
	selection   map[string]struct{}
	viewport    domain.Viewport

	undoStack []command
	redoStack []command

	minZoom  float64
	maxZoom  float64
	zoomStep float64
	acyclic  bool

	validator ports.ConnectionValidator
	newID     func() string
	logger    *slog.Logger

	subscribers map[int]func(domain.Event)
	nextSubID   int
	now         func() time.Time
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets a structured logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithZoomBounds overrides the [min, max] zoom clamp range.
func WithZoomBounds(min, max float64) Option {
	return func(d *Document) {
		if min > 0 && max >= min {
			d.minZoom, d.maxZoom = min, max
		}
	}
}

// WithZoomStep overrides the multiplicative zoom step (must be > 1).
func WithZoomStep(step float64) Option {
	return func(d *Document) {
		if step > 1 {
			d.zoomStep = step
		}
	}
}

// WithConnectionValidator delegates port compatibility checks to the given
// schema collaborator. Without one, any port pair is accepted.
func WithConnectionValidator(v ports.ConnectionValidator) Option {
	return func(d *Document) {
		d.validator = v
	}
}

// WithAcyclic makes Connect reject self-loops and any edge that would close
// a cycle. Off by default.
func WithAcyclic() Option {
	return func(d *Document) {
		d.acyclic = true
	}
}

// WithIDGenerator overrides the id generator used when callers omit ids.
func WithIDGenerator(gen func() string) Option {
	return func(d *Document) {
		if gen != nil {
			d.newID = gen
		}
	}
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		selection:   make(map[string]struct{}),
		viewport:    domain.DefaultViewport(),
		minZoom:     DefaultMinZoom,
		maxZoom:     DefaultMaxZoom,
		zoomStep:    DefaultZoomStep,
		newID:       uuid.NewString,
		logger:      logging.NewNop(),
		subscribers: make(map[int]func(domain.Event)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// --- Query surface (pure reads) ---

// Nodes returns the nodes in canvas order. The slice and its nodes are copies.
func (d *Document) Nodes() []domain.Node {
	out := make([]domain.Node, len(d.nodes))
	for i, n := range d.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Node returns a copy of the node with the given id.
func (d *Document) Node(id string) (domain.Node, error) {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return domain.Node{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	return d.nodes[idx].Clone(), nil
}

// Connections returns the connections in insertion order.
func (d *Document) Connections() []domain.Connection {
	out := make([]domain.Connection, len(d.connections))
	copy(out, d.connections)
	return out
}

// Connection returns the connection with the given id.
func (d *Document) Connection(id string) (domain.Connection, error) {
	idx := d.connIndex(id)
	if idx < 0 {
		return domain.Connection{}, fmt.Errorf("%w: %q", domain.ErrConnectionNotFound, id)
	}
	return d.connections[idx], nil
}

// SelectedNodeIDs returns the selected node ids, sorted for determinism.
func (d *Document) SelectedNodeIDs() []string {
	ids := make([]string, 0, len(d.selection))
	for id := range d.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasSelection reports whether any node is selected.
func (d *Document) HasSelection() bool { return len(d.selection) > 0 }

// Viewport returns the current camera transform.
func (d *Document) Viewport() domain.Viewport { return d.viewport }

// CanUndo reports whether an undo entry is available.
func (d *Document) CanUndo() bool { return len(d.undoStack) > 0 }

// CanRedo reports whether a redo entry is available.
func (d *Document) CanRedo() bool { return len(d.redoStack) > 0 }

// --- Document mutations (undoable) ---

// AddNode inserts a new node. An empty id is filled in by the id generator.
// Returns the inserted node (with its final id) or ErrDuplicateID.
func (d *Document) AddNode(n domain.Node) (domain.Node, error) {
	if n.ID == "" {
		n.ID = d.newID()
	}
	if d.nodeIndex(n.ID) >= 0 {
		return domain.Node{}, fmt.Errorf("%w: node %q", domain.ErrDuplicateID, n.ID)
	}
	n = n.Clone()

	cmd := &addNodeCmd{node: n}
	cmd.apply(d)
	d.record(cmd)
	d.logger.Debug("node added", "node_id", n.ID, "type", n.Type)
	d.emit(domain.Event{Type: domain.EventNodeAdded, NodeIDs: []string{n.ID}})
	return n.Clone(), nil
}

// RemoveNode removes a node and cascades removal of every connection that
// references it. The node and its cascaded connections form one undo unit.
func (d *Document) RemoveNode(id string) error {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}

	cmd := d.buildRemoveCmd([]string{id})
	cmd.apply(d)
	d.record(cmd)
	d.pruneSelection()
	d.logger.Debug("node removed", "node_id", id, "cascaded_connections", len(cmd.connections))
	d.emit(domain.Event{Type: domain.EventNodeRemoved, NodeIDs: []string{id}})
	return nil
}

// UpdateNode applies a partial update to a node. The inverse restores the
// node's prior field values. Each call is one discrete history entry; edits
// are never coalesced.
func (d *Document) UpdateNode(id string, patch domain.NodePatch) error {
	idx := d.nodeIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	if patch.IsZero() {
		return nil
	}

	before := d.nodes[idx].Clone()
	after := applyPatch(before, patch)

	cmd := &updateNodeCmd{id: id, before: before, after: after}
	cmd.apply(d)
	d.record(cmd)
	d.emit(domain.Event{Type: domain.EventNodeUpdated, NodeIDs: []string{id}})
	return nil
}

// Connect creates a connection between two node ports. Both endpoints must
// exist; port compatibility is delegated to the configured validator. When
// the acyclic policy is on, self-loops and cycle-closing edges are rejected
// as ErrIncompatiblePort.
func (d *Document) Connect(sourceID, sourcePort, targetID, targetPort string) (domain.Connection, error) {
	srcIdx := d.nodeIndex(sourceID)
	if srcIdx < 0 {
		return domain.Connection{}, fmt.Errorf("%w: source %q", domain.ErrNodeNotFound, sourceID)
	}
	tgtIdx := d.nodeIndex(targetID)
	if tgtIdx < 0 {
		return domain.Connection{}, fmt.Errorf("%w: target %q", domain.ErrNodeNotFound, targetID)
	}

	if d.validator != nil {
		if err := d.validator.ValidateConnection(d.nodes[srcIdx], sourcePort, d.nodes[tgtIdx], targetPort); err != nil {
			return domain.Connection{}, err
		}
	}

	if d.acyclic {
		if sourceID == targetID {
			return domain.Connection{}, fmt.Errorf("%w: self-loop on %q", domain.ErrIncompatiblePort, sourceID)
		}
		if d.reaches(targetID, sourceID) {
			return domain.Connection{}, fmt.Errorf("%w: connection %q -> %q would create a cycle", domain.ErrIncompatiblePort, sourceID, targetID)
		}
	}

	conn := domain.Connection{
		ID:           d.newID(),
		SourceNodeID: sourceID,
		SourcePortID: sourcePort,
		TargetNodeID: targetID,
		TargetPortID: targetPort,
	}

	cmd := &connectCmd{conn: conn}
	cmd.apply(d)
	d.record(cmd)
	d.logger.Debug("connected", "connection_id", conn.ID, "source", sourceID, "target", targetID)
	d.emit(domain.Event{Type: domain.EventConnected, ConnectionID: conn.ID, NodeIDs: []string{sourceID, targetID}})
	return conn, nil
}

// Disconnect removes a connection.
func (d *Document) Disconnect(connectionID string) error {
	idx := d.connIndex(connectionID)
	if idx < 0 {
		return fmt.Errorf("%w: %q", domain.ErrConnectionNotFound, connectionID)
	}

	cmd := &disconnectCmd{conn: d.connections[idx], index: idx}
	cmd.apply(d)
	d.record(cmd)
	d.emit(domain.Event{Type: domain.EventDisconnected, ConnectionID: connectionID})
	return nil
}

// RemoveSelected removes every selected node (and their connections) as a
// single undo unit. A no-op when nothing is selected.
func (d *Document) RemoveSelected() error {
	if len(d.selection) == 0 {
		return nil
	}
	ids := d.SelectedNodeIDs()

	cmd := d.buildRemoveCmd(ids)
	cmd.apply(d)
	d.record(cmd)
	d.pruneSelection()
	d.logger.Debug("selection removed", "nodes", len(ids))
	d.emit(domain.Event{Type: domain.EventNodeRemoved, NodeIDs: ids})
	return nil
}

// --- Selection (transient, never recorded in history) ---

// SelectNode selects a node. With exclusive, the selection is replaced by
// {id}; otherwise membership is toggled. Unknown ids are a silent no-op.
func (d *Document) SelectNode(id string, exclusive bool) {
	if d.nodeIndex(id) < 0 {
		return
	}
	if exclusive {
		d.selection = map[string]struct{}{id: {}}
	} else if _, ok := d.selection[id]; ok {
		delete(d.selection, id)
	} else {
		d.selection[id] = struct{}{}
	}
	d.emit(domain.Event{Type: domain.EventSelectionChanged, NodeIDs: d.SelectedNodeIDs()})
}

// SelectAll selects every node.
func (d *Document) SelectAll() {
	for _, n := range d.nodes {
		d.selection[n.ID] = struct{}{}
	}
	d.emit(domain.Event{Type: domain.EventSelectionChanged, NodeIDs: d.SelectedNodeIDs()})
}

// ClearSelection empties the selection set.
func (d *Document) ClearSelection() {
	if len(d.selection) == 0 {
		return
	}
	d.selection = make(map[string]struct{})
	d.emit(domain.Event{Type: domain.EventSelectionChanged})
}

// --- History ---

// Undo reverts the most recent mutating action. A no-op when the undo stack
// is empty.
func (d *Document) Undo() {
	if len(d.undoStack) == 0 {
		return
	}
	cmd := d.undoStack[len(d.undoStack)-1]
	d.undoStack = d.undoStack[:len(d.undoStack)-1]
	cmd.revert(d)
	d.redoStack = append(d.redoStack, cmd)
	d.pruneSelection()
	d.emit(domain.Event{Type: domain.EventUndone})
}

// Redo re-applies the most recently undone action. A no-op when the redo
// stack is empty.
func (d *Document) Redo() {
	if len(d.redoStack) == 0 {
		return
	}
	cmd := d.redoStack[len(d.redoStack)-1]
	d.redoStack = d.redoStack[:len(d.redoStack)-1]
	cmd.apply(d)
	d.undoStack = append(d.undoStack, cmd)
	d.pruneSelection()
	d.emit(domain.Event{Type: domain.EventRedone})
}

// --- Viewport (camera state, never recorded in history) ---

// Pan shifts the viewport offset by the given delta.
func (d *Document) Pan(dx, dy float64) {
	d.viewport.PanX += dx
	d.viewport.PanY += dy
	d.emit(domain.Event{Type: domain.EventViewportChanged})
}

// ZoomIn zooms in by one step.
func (d *Document) ZoomIn() { d.SetZoom(d.viewport.Zoom * d.zoomStep) }

// ZoomOut zooms out by one step.
func (d *Document) ZoomOut() { d.SetZoom(d.viewport.Zoom / d.zoomStep) }

// SetZoom sets the zoom scale, clamped to the configured bounds.
func (d *Document) SetZoom(scale float64) {
	d.viewport.Zoom = d.clampZoom(scale)
	d.emit(domain.Event{Type: domain.EventViewportChanged})
}

// ResetView restores the identity transform.
func (d *Document) ResetView() {
	d.viewport = domain.DefaultViewport()
	d.emit(domain.Event{Type: domain.EventViewportChanged})
}

// --- Serialization ---

// Serialize produces a structural snapshot suitable for JSON encoding.
func (d *Document) Serialize() *domain.Snapshot {
	snap := &domain.Snapshot{
		Nodes:       d.nodes,
		Connections: d.connections,
		Viewport:    d.viewport,
	}
	return snap.Clone()
}

// Load replaces the full document state with the snapshot and resets both
// history stacks and the selection. Loading is a hard boundary: it is not
// itself undoable. The snapshot is validated before any state is touched.
func (d *Document) Load(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidSnapshot)
	}
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	snap = snap.Clone()
	d.nodes = snap.Nodes
	d.connections = snap.Connections
	d.viewport = snap.Viewport
	d.viewport.Zoom = d.clampZoom(d.viewport.Zoom)
	d.selection = make(map[string]struct{})
	d.undoStack = nil
	d.redoStack = nil
	d.logger.Debug("document loaded", "nodes", len(d.nodes), "connections", len(d.connections))
	d.emit(domain.Event{Type: domain.EventLoaded})
	return nil
}

// --- Observation ---

// Subscribe registers an observer called after every mutation. The returned
// function cancels the subscription.
func (d *Document) Subscribe(fn func(domain.Event)) func() {
	id := d.nextSubID
	d.nextSubID++
	d.subscribers[id] = fn
	return func() { delete(d.subscribers, id) }
}

// --- Internals ---

func (d *Document) nodeIndex(id string) int {
	for i, n := range d.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) connIndex(id string) int {
	for i, c := range d.connections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// record pushes the command's inverse availability onto the undo stack and
// clears the redo stack: a fresh action invalidates any undone future.
func (d *Document) record(cmd command) {
	d.undoStack = append(d.undoStack, cmd)
	d.redoStack = nil
}

// pruneSelection drops selected ids that no longer reference live nodes,
// keeping the selection-subset invariant after removals and undo/redo.
func (d *Document) pruneSelection() {
	for id := range d.selection {
		if d.nodeIndex(id) < 0 {
			delete(d.selection, id)
		}
	}
}

func (d *Document) clampZoom(scale float64) float64 {
	if scale < d.minZoom {
		return d.minZoom
	}
	if scale > d.maxZoom {
		return d.maxZoom
	}
	return scale
}

// reaches reports whether to is reachable from from by following directed
// connections. Used by the acyclic policy.
func (d *Document) reaches(from, to string) bool {
	visited := make(map[string]bool)
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, c := range d.connections {
			if c.SourceNodeID == current && !visited[c.TargetNodeID] {
				queue = append(queue, c.TargetNodeID)
			}
		}
	}
	return false
}

func (d *Document) emit(ev domain.Event) {
	if len(d.subscribers) == 0 {
		return
	}
	ev.Timestamp = d.now()
	for _, fn := range d.subscribers {
		fn(ev)
	}
}

func applyPatch(n domain.Node, patch domain.NodePatch) domain.Node {
	out := n.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Position != nil {
		out.Position = *patch.Position
	}
	if patch.Size != nil {
		out.Size = *patch.Size
	}
	if len(patch.Configuration) > 0 && out.Configuration == nil {
		out.Configuration = make(map[string]string, len(patch.Configuration))
	}
	for k, v := range patch.Configuration {
		out.Configuration[k] = v
	}
	for _, k := range patch.RemoveConfiguration {
		delete(out.Configuration, k)
	}
	return out
}

// validateSnapshot checks structural integrity before a Load replaces state.
func validateSnapshot(snap *domain.Snapshot) error {
	nodeIDs := make(map[string]struct{}, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node with empty id", domain.ErrInvalidSnapshot)
		}
		if _, dup := nodeIDs[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", domain.ErrInvalidSnapshot, n.ID)
		}
		nodeIDs[n.ID] = struct{}{}
	}

	connIDs := make(map[string]struct{}, len(snap.Connections))
	for _, c := range snap.Connections {
		if c.ID == "" {
			return fmt.Errorf("%w: connection with empty id", domain.ErrInvalidSnapshot)
		}
		if _, dup := connIDs[c.ID]; dup {
			return fmt.Errorf("%w: duplicate connection id %q", domain.ErrInvalidSnapshot, c.ID)
		}
		connIDs[c.ID] = struct{}{}
		if _, ok := nodeIDs[c.SourceNodeID]; !ok {
			return fmt.Errorf("%w: connection %q references missing source node %q", domain.ErrInvalidSnapshot, c.ID, c.SourceNodeID)
		}
		if _, ok := nodeIDs[c.TargetNodeID]; !ok {
			return fmt.Errorf("%w: connection %q references missing target node %q", domain.ErrInvalidSnapshot, c.ID, c.TargetNodeID)
		}
	}
	return nil
}
