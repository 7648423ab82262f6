package domain

// Viewport is the camera transform applied when presenting the graph.
// It is deliberately excluded from the undo history: panning around a
// document is not an edit.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the identity transform.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}
