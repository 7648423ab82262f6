package domain

import "reflect"

// SnapshotDiff represents the changes between two document snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	NodesAdded   []Node   `json:"nodes_added,omitempty"`
	NodesChanged []Node   `json:"nodes_changed,omitempty"`
	NodesRemoved []string `json:"nodes_removed,omitempty"`

	ConnectionsAdded   []Connection `json:"connections_added,omitempty"`
	ConnectionsRemoved []string     `json:"connections_removed,omitempty"`

	// Viewport is set only when the camera transform changed.
	Viewport *Viewport `json:"viewport,omitempty"`
}

// Diff calculates the difference between two snapshots. If old is nil, the
// diff represents the entire new snapshot (initial load). Returns nil when
// nothing changed.
func Diff(old, new *Snapshot) *SnapshotDiff {
	if new == nil {
		return nil
	}

	d := &SnapshotDiff{}

	oldNodes := make(map[string]Node)
	if old != nil {
		for _, n := range old.Nodes {
			oldNodes[n.ID] = n
		}
	}
	newNodes := make(map[string]struct{}, len(new.Nodes))
	for _, n := range new.Nodes {
		newNodes[n.ID] = struct{}{}
		prev, exists := oldNodes[n.ID]
		switch {
		case !exists:
			d.NodesAdded = append(d.NodesAdded, n.Clone())
		case !reflect.DeepEqual(prev, n):
			d.NodesChanged = append(d.NodesChanged, n.Clone())
		}
	}
	if old != nil {
		// Walk the old slice so removal order is deterministic.
		for _, n := range old.Nodes {
			if _, ok := newNodes[n.ID]; !ok {
				d.NodesRemoved = append(d.NodesRemoved, n.ID)
			}
		}
	}

	oldConns := make(map[string]Connection)
	if old != nil {
		for _, c := range old.Connections {
			oldConns[c.ID] = c
		}
	}
	newConns := make(map[string]struct{}, len(new.Connections))
	for _, c := range new.Connections {
		newConns[c.ID] = struct{}{}
		if _, exists := oldConns[c.ID]; !exists {
			d.ConnectionsAdded = append(d.ConnectionsAdded, c)
		}
	}
	if old != nil {
		for _, c := range old.Connections {
			if _, ok := newConns[c.ID]; !ok {
				d.ConnectionsRemoved = append(d.ConnectionsRemoved, c.ID)
			}
		}
	}

	if old == nil || old.Viewport != new.Viewport {
		vp := new.Viewport
		d.Viewport = &vp
	}

	if d.IsEmpty() {
		return nil
	}
	return d
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return len(d.NodesAdded) == 0 &&
		len(d.NodesChanged) == 0 &&
		len(d.NodesRemoved) == 0 &&
		len(d.ConnectionsAdded) == 0 &&
		len(d.ConnectionsRemoved) == 0 &&
		d.Viewport == nil
}
