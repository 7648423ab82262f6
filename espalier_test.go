package espalier_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

func TestFacade_Integration(t *testing.T) {
	doc := espalier.New()

	// 1. Build a small flow
	trigger, err := doc.AddNode(domain.Node{
		Type:     "webhook",
		Title:    "Incoming",
		Position: domain.Position{X: 40, Y: 40},
	})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	action, err := doc.AddNode(domain.Node{
		Type:     "http_request",
		Title:    "Notify",
		Position: domain.Position{X: 320, Y: 40},
	})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}

	conn, err := doc.Connect(trigger.ID, "out", action.ID, "in")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// 2. Edit and inspect
	if err := doc.UpdateNode(action.ID, domain.NodePatch{Title: ptr("Notify Slack")}); err != nil {
		t.Fatalf("UpdateNode failed: %v", err)
	}
	got, err := doc.Node(action.ID)
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if got.Title != "Notify Slack" {
		t.Errorf("Title = %q, want 'Notify Slack'", got.Title)
	}

	// 3. History
	doc.Undo()
	got, _ = doc.Node(action.ID)
	if got.Title != "Notify" {
		t.Errorf("after Undo, Title = %q, want 'Notify'", got.Title)
	}
	doc.Redo()
	got, _ = doc.Node(action.ID)
	if got.Title != "Notify Slack" {
		t.Errorf("after Redo, Title = %q, want 'Notify Slack'", got.Title)
	}

	// 4. Round-trip through JSON
	data, err := json.Marshal(doc.Serialize())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	restored, err := espalier.FromSnapshot(&snap)
	if err != nil {
		t.Fatalf("FromSnapshot failed: %v", err)
	}
	if len(restored.Nodes()) != 2 || len(restored.Connections()) != 1 {
		t.Errorf("restored %d nodes / %d connections, want 2 / 1",
			len(restored.Nodes()), len(restored.Connections()))
	}
	if restored.CanUndo() {
		t.Error("restored document should start with empty history")
	}

	// 5. Cascade removal
	if err := doc.RemoveNode(trigger.ID); err != nil {
		t.Fatalf("RemoveNode failed: %v", err)
	}
	if _, err := doc.Connection(conn.ID); !errors.Is(err, domain.ErrConnectionNotFound) {
		t.Errorf("connection should be cascaded away, got %v", err)
	}
}

func TestFacade_Options(t *testing.T) {
	next := 0
	doc := espalier.New(
		espalier.WithIDGenerator(func() string { next++; return "gen" }),
		espalier.WithZoomBounds(0.5, 2.0),
		espalier.WithAcyclic(),
	)

	n, err := doc.AddNode(domain.Node{Type: "task"})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if n.ID != "gen" {
		t.Errorf("generated id = %q, want 'gen'", n.ID)
	}

	doc.SetZoom(10)
	if z := doc.Viewport().Zoom; z != 2.0 {
		t.Errorf("zoom = %v, want clamp at 2.0", z)
	}

	if _, err := doc.Connect(n.ID, "out", n.ID, "in"); !errors.Is(err, domain.ErrIncompatiblePort) {
		t.Errorf("self loop should be rejected under acyclic policy, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
