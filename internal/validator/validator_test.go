package validator

import (
	"strings"
	"testing"

	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
)

func testCatalog(t *testing.T) *schema.Catalog {
	t.Helper()
	cat, err := schema.ParseCatalog([]byte(`
types:
  - id: trigger
    ports:
      - id: out
        direction: source
        kind: flow
  - id: action
    fields:
      - key: url
        type: string
    ports:
      - id: in
        direction: target
        kind: flow
      - id: out
        direction: source
        kind: flow
`))
	if err != nil {
		t.Fatalf("Failed to parse catalog: %v", err)
	}
	return cat
}

func TestValidateSnapshot(t *testing.T) {
	cat := testCatalog(t)

	// Scenario A: Valid document
	// trigger -> action
	valid := &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "t1", Type: "trigger"},
			{ID: "a1", Type: "action", Configuration: map[string]string{"url": "https://example.com"}},
		},
		Connections: []domain.Connection{
			{ID: "c1", SourceNodeID: "t1", SourcePortID: "out", TargetNodeID: "a1", TargetPortID: "in"},
		},
		Viewport: domain.DefaultViewport(),
	}

	if err := ValidateSnapshot(valid, cat); err != nil {
		t.Errorf("Scenario A (Valid) failed: %v", err)
	}

	// Scenario B: Broken link
	broken := &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "t1", Type: "trigger"},
		},
		Connections: []domain.Connection{
			{ID: "c1", SourceNodeID: "t1", SourcePortID: "out", TargetNodeID: "ghost", TargetPortID: "in"},
		},
		Viewport: domain.DefaultViewport(),
	}

	err := ValidateSnapshot(broken, cat)
	if err == nil {
		t.Error("Scenario B (Broken) should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "missing target node") {
		t.Errorf("Expected 'missing target node' error, got: %v", err)
	}

	// Scenario C: Unknown type and missing required field
	schemaErrs := &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "x1", Type: "mystery"},
			{ID: "a1", Type: "action"},
		},
		Viewport: domain.DefaultViewport(),
	}

	err = ValidateSnapshot(schemaErrs, cat)
	if err == nil {
		t.Fatal("Scenario C should have failed, but got nil")
	}
	if !strings.Contains(err.Error(), "unknown type 'mystery'") {
		t.Errorf("Expected unknown type error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "url") {
		t.Errorf("Expected required field error for 'url', got: %v", err)
	}

	// Scenario D: Wrong port direction
	wrongPort := &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "a1", Type: "action", Configuration: map[string]string{"url": "x"}},
			{ID: "a2", Type: "action", Configuration: map[string]string{"url": "y"}},
		},
		Connections: []domain.Connection{
			{ID: "c1", SourceNodeID: "a1", SourcePortID: "in", TargetNodeID: "a2", TargetPortID: "in"},
		},
		Viewport: domain.DefaultViewport(),
	}

	err = ValidateSnapshot(wrongPort, cat)
	if err == nil {
		t.Error("Scenario D should have failed, but got nil")
	} else if !strings.Contains(err.Error(), "not a source") {
		t.Errorf("Expected direction error, got: %v", err)
	}
}

func TestValidateSnapshot_NilCatalogStructureOnly(t *testing.T) {
	snap := &domain.Snapshot{
		Nodes: []domain.Node{
			{ID: "n1", Type: "anything"},
			{ID: "n1", Type: "anything"},
		},
		Viewport: domain.DefaultViewport(),
	}

	err := ValidateSnapshot(snap, nil)
	if err == nil {
		t.Fatal("Expected duplicate id error, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate node id") {
		t.Errorf("Expected duplicate node id error, got: %v", err)
	}
}
