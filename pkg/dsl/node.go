package dsl

import "github.com/aretw0/espalier/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Title sets the node's display title.
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	n.node.Title = title
	return n
}

// At places the node at the given canvas coordinates.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// Sized sets the node's width and height.
func (n *NodeBuilder) Sized(w, h float64) *NodeBuilder {
	n.node.Size = domain.Size{W: w, H: h}
	return n
}

// Config adds a configuration entry to the node.
func (n *NodeBuilder) Config(key, value string) *NodeBuilder {
	if n.node.Configuration == nil {
		n.node.Configuration = make(map[string]string)
	}
	n.node.Configuration[key] = value
	return n
}

// To connects this node's source port to a target node's port and returns the
// node builder so chained declarations keep reading top to bottom.
func (n *NodeBuilder) To(sourcePort, targetID, targetPort string) *NodeBuilder {
	n.builder.Connect(n.node.ID, sourcePort, targetID, targetPort)
	return n
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node.Clone()
}
