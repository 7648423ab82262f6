package domain

import "testing"

func TestConnectionReferences(t *testing.T) {
	conn := Connection{
		ID:           "c1",
		SourceNodeID: "a",
		SourcePortID: "out",
		TargetNodeID: "b",
		TargetPortID: "in",
	}

	tests := []struct {
		nodeID string
		want   bool
	}{
		{"a", true},
		{"b", true},
		{"c", false},
		{"out", false}, // port ids are not node ids
		{"", false},
	}

	for _, tt := range tests {
		if got := conn.References(tt.nodeID); got != tt.want {
			t.Errorf("References(%q) = %v, want %v", tt.nodeID, got, tt.want)
		}
	}
}

func TestConnectionReferences_SelfLoop(t *testing.T) {
	conn := Connection{ID: "c1", SourceNodeID: "a", TargetNodeID: "a"}
	if !conn.References("a") {
		t.Error("References() should match either endpoint of a self loop")
	}
}
