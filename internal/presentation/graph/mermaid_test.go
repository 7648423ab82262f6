package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
)

func TestGenerateMermaid(t *testing.T) {
	cat := &schema.Catalog{
		Types: []schema.NodeType{
			{ID: "webhook", Category: "trigger"},
			{ID: "log", Category: "output"},
			{ID: "transform"},
		},
	}

	tests := []struct {
		name     string
		snap     *domain.Snapshot
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Trigger Node Shape",
			snap: &domain.Snapshot{
				Nodes: []domain.Node{
					{ID: "hook", Type: "webhook", Title: "On Request"},
				},
			},
			contains: []string{
				"hook((\"On Request\"))",
			},
		},
		{
			name: "Output Node Shape",
			snap: &domain.Snapshot{
				Nodes: []domain.Node{
					{ID: "logger", Type: "log"},
				},
			},
			contains: []string{
				"logger[[\"log\"]]",
			},
		},
		{
			name: "Default Shape And Title Fallback",
			snap: &domain.Snapshot{
				Nodes: []domain.Node{
					{ID: "t1", Type: "transform"},
				},
			},
			contains: []string{
				"t1[\"transform\"]",
			},
		},
		{
			name: "ID Sanitization",
			snap: &domain.Snapshot{
				Nodes: []domain.Node{
					{ID: "path/to/node.a", Type: "transform"},
					{ID: "hyphen-ated", Type: "transform"},
				},
			},
			contains: []string{
				"path_to_node_a[",
				"hyphen_ated[",
			},
		},
		{
			name: "Connection With Port Label",
			snap: &domain.Snapshot{
				Nodes: []domain.Node{
					{ID: "a", Type: "transform"},
					{ID: "b", Type: "transform"},
				},
				Connections: []domain.Connection{
					{ID: "c1", SourceNodeID: "a", SourcePortID: "out", TargetNodeID: "b", TargetPortID: "in"},
				},
			},
			contains: []string{
				`a -- "out" --> b`,
			},
		},
		{
			name: "Selection Overlay",
			snap: &domain.Snapshot{
				Nodes: []domain.Node{
					{ID: "a", Type: "transform"},
					{ID: "b", Type: "transform"},
				},
			},
			overlay: &graph.Overlay{SelectedNodes: []string{"b", "b"}},
			contains: []string{
				"classDef selected",
				"class b selected;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.snap, cat, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}
}
