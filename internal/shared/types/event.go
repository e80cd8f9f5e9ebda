package types

import "time"

// EventType classifies container mutations on the stream.
type EventType string

const (
	EventWidgetAdded     EventType = "widget.added"
	EventWidgetRemoved   EventType = "widget.removed"
	EventWidgetUpdated   EventType = "widget.updated"
	EventWidgetReordered EventType = "widget.reordered"
)

// Event is broadcast to stream subscribers after a successful mutation.
type Event struct {
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	Context string    `json:"context"`
	User    string    `json:"user"`
	Alias   string    `json:"alias,omitempty"`
	At      time.Time `json:"at"`
}
