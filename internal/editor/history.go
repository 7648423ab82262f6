package editor

import "github.com/aretw0/espalier/pkg/domain"

// command is one reversible history entry. apply performs the forward form
// of the action, revert its exact inverse. Commands mutate the document's
// slices directly; invariant upkeep (selection pruning, events) stays with
// the public operations in document.go.
//
// Removal commands remember slice indices so revert restores the original
// canvas ordering, which the serialize round-trip property depends on.
type command interface {
	apply(d *Document)
	revert(d *Document)
}

// --- add node ---

type addNodeCmd struct {
	node domain.Node
}

func (c *addNodeCmd) apply(d *Document) {
	d.nodes = append(d.nodes, c.node.Clone())
}

func (c *addNodeCmd) revert(d *Document) {
	if idx := d.nodeIndex(c.node.ID); idx >= 0 {
		d.nodes = append(d.nodes[:idx], d.nodes[idx+1:]...)
	}
}

// --- remove nodes (single or batched selection), with cascaded connections ---

type removedNode struct {
	node  domain.Node
	index int
}

type removedConn struct {
	conn  domain.Connection
	index int
}

type removeNodesCmd struct {
	nodes       []removedNode
	connections []removedConn
}

// buildRemoveCmd captures the nodes with the given ids and every connection
// referencing them, together with their current slice positions. Entries are
// collected in ascending index order.
func (d *Document) buildRemoveCmd(ids []string) *removeNodesCmd {
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	cmd := &removeNodesCmd{}
	for i, n := range d.nodes {
		if _, ok := doomed[n.ID]; ok {
			cmd.nodes = append(cmd.nodes, removedNode{node: n.Clone(), index: i})
		}
	}
	for i, c := range d.connections {
		for id := range doomed {
			if c.References(id) {
				cmd.connections = append(cmd.connections, removedConn{conn: c, index: i})
				break
			}
		}
	}
	return cmd
}

func (c *removeNodesCmd) apply(d *Document) {
	for _, rc := range c.connections {
		if idx := d.connIndex(rc.conn.ID); idx >= 0 {
			d.connections = append(d.connections[:idx], d.connections[idx+1:]...)
		}
	}
	for _, rn := range c.nodes {
		if idx := d.nodeIndex(rn.node.ID); idx >= 0 {
			d.nodes = append(d.nodes[:idx], d.nodes[idx+1:]...)
		}
	}
}

func (c *removeNodesCmd) revert(d *Document) {
	// Reinsert in ascending index order so each saved position is valid again.
	for _, rn := range c.nodes {
		d.nodes = insertNodeAt(d.nodes, rn.node.Clone(), rn.index)
	}
	for _, rc := range c.connections {
		d.connections = insertConnAt(d.connections, rc.conn, rc.index)
	}
}

// --- update node ---

type updateNodeCmd struct {
	id     string
	before domain.Node
	after  domain.Node
}

func (c *updateNodeCmd) apply(d *Document) {
	if idx := d.nodeIndex(c.id); idx >= 0 {
		d.nodes[idx] = c.after.Clone()
	}
}

func (c *updateNodeCmd) revert(d *Document) {
	if idx := d.nodeIndex(c.id); idx >= 0 {
		d.nodes[idx] = c.before.Clone()
	}
}

// --- connect / disconnect ---

type connectCmd struct {
	conn domain.Connection
}

func (c *connectCmd) apply(d *Document) {
	d.connections = append(d.connections, c.conn)
}

func (c *connectCmd) revert(d *Document) {
	if idx := d.connIndex(c.conn.ID); idx >= 0 {
		d.connections = append(d.connections[:idx], d.connections[idx+1:]...)
	}
}

type disconnectCmd struct {
	conn  domain.Connection
	index int
}

func (c *disconnectCmd) apply(d *Document) {
	if idx := d.connIndex(c.conn.ID); idx >= 0 {
		d.connections = append(d.connections[:idx], d.connections[idx+1:]...)
	}
}

func (c *disconnectCmd) revert(d *Document) {
	d.connections = insertConnAt(d.connections, c.conn, c.index)
}

// --- helpers ---

func insertNodeAt(nodes []domain.Node, n domain.Node, idx int) []domain.Node {
	if idx < 0 || idx > len(nodes) {
		idx = len(nodes)
	}
	nodes = append(nodes, domain.Node{})
	copy(nodes[idx+1:], nodes[idx:])
	nodes[idx] = n
	return nodes
}

func insertConnAt(conns []domain.Connection, c domain.Connection, idx int) []domain.Connection {
	if idx < 0 || idx > len(conns) {
		idx = len(conns)
	}
	conns = append(conns, domain.Connection{})
	copy(conns[idx+1:], conns[idx:])
	conns[idx] = c
	return conns
}
