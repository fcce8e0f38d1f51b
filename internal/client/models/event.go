package models

// EventType identifies a push-channel event kind.
type EventType string

const (
	// EventCollectionChanged signals that the remote collection mutated and
	// the local mirror should be refetched. No payload.
	EventCollectionChanged EventType = "collection-changed"

	// EventReminderDue carries a note whose scheduled reminder time arrived.
	EventReminderDue EventType = "reminder-due"
)

// Event is a single inbound push-channel message.
type Event struct {
	Type EventType `json:"type"`
	Note *Note     `json:"note,omitempty"`
}
