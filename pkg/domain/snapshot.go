package domain

// Snapshot is the JSON-serializable structural state of a document:
// nodes and connections in their canvas order, plus the viewport.
// Edit history and selection are runtime state and are not captured.
type Snapshot struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	Viewport    Viewport     `json:"viewport"`
}

// Clone returns a deep copy of the snapshot, isolating the caller from
// later mutations of the source.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Nodes:       make([]Node, len(s.Nodes)),
		Connections: make([]Connection, len(s.Connections)),
		Viewport:    s.Viewport,
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Connections, s.Connections)
	return out
}
