package dsl

import (
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// Builder manages the snapshot construction. Nodes keep the order they were
// first declared in, which becomes the canvas stacking order.
type Builder struct {
	nodes       map[string]*NodeBuilder
	order       []string
	connections []domain.Connection
	viewport    domain.Viewport
}

// New creates a new snapshot builder.
func New() *Builder {
	return &Builder{
		nodes:    make(map[string]*NodeBuilder),
		viewport: domain.DefaultViewport(),
	}
}

// Node declares a node with the given id and type.
// If the node already exists, it returns the existing builder.
func (b *Builder) Node(id, nodeType string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{
			ID:   id,
			Type: nodeType,
		},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Connect declares a connection between two node ports. The connection id is
// derived from the endpoints, so declaring the same edge twice is idempotent.
func (b *Builder) Connect(sourceID, sourcePort, targetID, targetPort string) *Builder {
	id := fmt.Sprintf("%s.%s->%s.%s", sourceID, sourcePort, targetID, targetPort)
	for _, c := range b.connections {
		if c.ID == id {
			return b
		}
	}
	b.connections = append(b.connections, domain.Connection{
		ID:           id,
		SourceNodeID: sourceID,
		SourcePortID: sourcePort,
		TargetNodeID: targetID,
		TargetPortID: targetPort,
	})
	return b
}

// Viewport sets the initial camera transform.
func (b *Builder) Viewport(panX, panY, zoom float64) *Builder {
	b.viewport = domain.Viewport{PanX: panX, PanY: panY, Zoom: zoom}
	return b
}

// Snapshot compiles the declared nodes and connections into a snapshot.
// The result is independent of the builder and safe to mutate.
func (b *Builder) Snapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		Nodes:       make([]domain.Node, 0, len(b.order)),
		Connections: make([]domain.Connection, len(b.connections)),
		Viewport:    b.viewport,
	}
	for _, id := range b.order {
		snap.Nodes = append(snap.Nodes, b.nodes[id].node.Clone())
	}
	copy(snap.Connections, b.connections)
	return snap
}
