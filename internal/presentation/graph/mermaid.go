package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
)

// Overlay contains transient editor state to visualize on the graph.
type Overlay struct {
	SelectedNodes []string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a snapshot.
// The optional catalog picks node shapes by category:
// - trigger: ((Circle))
// - output: [[Subroutine]]
// - Default: [Rectangle]
// Selected nodes from the overlay get a highlight class.
func GenerateMermaid(snap *domain.Snapshot, cat *schema.Catalog, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range snap.Nodes {
		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(node.ID)

		// Node Shape based on catalog category
		opener, closer := "[", "]"
		if cat != nil {
			if nt, ok := cat.Type(node.Type); ok {
				switch nt.Category {
				case "trigger":
					opener, closer = "((", "))" // Circle
				case "output":
					opener, closer = "[[", "]]" // Subroutine
				}
			}
		}

		label := node.Title
		if label == "" {
			label = node.Type
		}
		// Escape double quotes for Mermaid labels
		label = strings.ReplaceAll(label, "\"", "'")

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, conn := range snap.Connections {
		safeFrom := sanitizeMermaidID(conn.SourceNodeID)
		safeTo := sanitizeMermaidID(conn.TargetNodeID)

		arrow := "-->"
		if conn.SourcePortID != "" {
			safePort := strings.ReplaceAll(conn.SourcePortID, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safePort)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	// Apply Overlay Styles
	if overlay != nil && len(overlay.SelectedNodes) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		// Deduplicate selected nodes (using safeIDs)
		seen := make(map[string]bool)
		for _, id := range overlay.SelectedNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeID))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
