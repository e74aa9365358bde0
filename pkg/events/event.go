package events

import (
	"context"
	"time"
)

const (
	TypeDocumentStatusChanged = "DOCUMENT_STATUS_CHANGED"
	TypeMemoryPublished       = "MEMORY_PUBLISHED"
	TypeMemoryDisconnected    = "MEMORY_DISCONNECTED"
	TypeProfileRecomputed     = "PROFILE_RECOMPUTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "MEMORY_PUBLISHED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Sink is anything that can carry an event: the NATS publisher or an
// in-process dispatcher when no broker is configured.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// PayloadString reads a string field from an event payload.
func PayloadString(e Event, key string) string {
	if e == nil {
		return ""
	}
	v, ok := e.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
