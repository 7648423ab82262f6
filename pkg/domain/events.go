package domain

import "time"

// EventType defines the category of a document change event.
type EventType string

const (
	EventNodeAdded        EventType = "node_added"
	EventNodeUpdated      EventType = "node_updated"
	EventNodeRemoved      EventType = "node_removed"
	EventConnected        EventType = "connected"
	EventDisconnected     EventType = "disconnected"
	EventSelectionChanged EventType = "selection_changed"
	EventViewportChanged  EventType = "viewport_changed"
	EventUndone           EventType = "undone"
	EventRedone           EventType = "redone"
	EventLoaded           EventType = "loaded"
)

// Event is the change notification delivered to document subscribers after
// every mutation. Observers typically re-read the document query surface;
// the event only says what kind of thing changed and which ids were touched.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	NodeIDs      []string  `json:"node_ids,omitempty"`
	ConnectionID string    `json:"connection_id,omitempty"`
}
