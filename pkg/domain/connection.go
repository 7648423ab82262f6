package domain

// PortDirection tags a port as an output (source) or input (target) endpoint.
type PortDirection string

const (
	PortSource PortDirection = "source"
	PortTarget PortDirection = "target"
)

// Connection is a directed edge from a source node's output port to a target
// node's input port. Both endpoints must reference live nodes; the document
// cascades removal when either endpoint node is removed.
type Connection struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"sourceNodeId"`
	SourcePortID string `json:"sourcePortId"`
	TargetNodeID string `json:"targetNodeId"`
	TargetPortID string `json:"targetPortId"`
}

// References reports whether the connection touches the given node.
func (c Connection) References(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
