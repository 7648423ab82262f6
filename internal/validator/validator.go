// Package validator performs deep document checks against a node type
// catalog. The editor core only validates structure (dangling endpoints,
// duplicate ids); this package additionally verifies that every node type,
// port and configuration value matches the catalog, which is what the CLI
// `validate` command runs before a document is shipped to a host.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
)

// ValidateSnapshot checks the snapshot against the catalog. A nil catalog
// skips schema checks and only verifies structure.
func ValidateSnapshot(snap *domain.Snapshot, cat *schema.Catalog) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	var errors []string

	nodeTypes := make(map[string]*schema.NodeType, len(snap.Nodes))
	seenNodes := make(map[string]bool, len(snap.Nodes))
	for i := range snap.Nodes {
		node := &snap.Nodes[i]
		if node.ID == "" {
			errors = append(errors, "node with empty id")
			continue
		}
		if seenNodes[node.ID] {
			errors = append(errors, fmt.Sprintf("duplicate node id: '%s'", node.ID))
			continue
		}
		seenNodes[node.ID] = true

		if cat == nil {
			continue
		}

		nt, ok := cat.Type(node.Type)
		if !ok {
			errors = append(errors, fmt.Sprintf("node '%s': unknown type '%s'", node.ID, node.Type))
			continue
		}
		nodeTypes[node.ID] = nt

		if err := schema.ValidateConfiguration(nt, node.Configuration); err != nil {
			errors = append(errors, fmt.Sprintf("node '%s': %v", node.ID, err))
		}
	}

	seenConns := make(map[string]bool, len(snap.Connections))
	for _, conn := range snap.Connections {
		if seenConns[conn.ID] {
			errors = append(errors, fmt.Sprintf("duplicate connection id: '%s'", conn.ID))
			continue
		}
		seenConns[conn.ID] = true

		if !seenNodes[conn.SourceNodeID] {
			errors = append(errors, fmt.Sprintf("connection '%s': missing source node '%s'", conn.ID, conn.SourceNodeID))
			continue
		}
		if !seenNodes[conn.TargetNodeID] {
			errors = append(errors, fmt.Sprintf("connection '%s': missing target node '%s'", conn.ID, conn.TargetNodeID))
			continue
		}

		if cat == nil {
			continue
		}

		src, srcOK := nodeTypes[conn.SourceNodeID]
		tgt, tgtOK := nodeTypes[conn.TargetNodeID]
		if !srcOK || !tgtOK {
			// The unknown-type error was already reported above.
			continue
		}
		if err := schema.CheckPorts(src, conn.SourcePortID, tgt, conn.TargetPortID); err != nil {
			errors = append(errors, fmt.Sprintf("connection '%s': %v", conn.ID, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}
