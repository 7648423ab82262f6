package domain

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a node's width and height in canvas units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Node represents a single instance placed on the canvas.
//
// Type is an open identifier: the document never interprets it, it only
// carries it. Schema metadata for a type (display name, fields, ports) lives
// outside the instance model and is looked up by the host at render time.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`

	Position Position `json:"position"`
	Size     Size     `json:"size"`

	// Configuration holds instance data as raw string values.
	// Keys and their meaning are described by the node type's schema.
	Configuration map[string]string `json:"configuration,omitempty"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Configuration != nil {
		c.Configuration = make(map[string]string, len(n.Configuration))
		for k, v := range n.Configuration {
			c.Configuration[k] = v
		}
	}
	return c
}

// NodePatch describes a partial update to a node. Nil fields are left
// untouched. Configuration entries are upserted key by key; keys listed in
// RemoveConfiguration are deleted.
type NodePatch struct {
	Title    *string   `json:"title,omitempty"`
	Position *Position `json:"position,omitempty"`
	Size     *Size     `json:"size,omitempty"`

	Configuration       map[string]string `json:"configuration,omitempty"`
	RemoveConfiguration []string          `json:"removeConfiguration,omitempty"`
}

// IsZero reports whether the patch would not change anything.
func (p NodePatch) IsZero() bool {
	return p.Title == nil && p.Position == nil && p.Size == nil &&
		len(p.Configuration) == 0 && len(p.RemoveConfiguration) == 0
}
