package events

import "time"

// Topic is the single in-process channel all dashboard events flow on.
const Topic = "DASHBOARD_EVENTS"

// Event types emitted by the orchestration services.
const (
	TypeDocumentIngested   = "DOCUMENT_INGESTED"
	TypeDocumentDeleted    = "DOCUMENT_DELETED"
	TypeTranscriptAppended = "TRANSCRIPT_APPENDED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the canonical Event implementation.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
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

// NewDocumentIngested marks one or more names accepted by the backend.
func NewDocumentIngested(names []string) BaseEvent {
	return BaseEvent{
		Type:       TypeDocumentIngested,
		Data:       map[string]interface{}{"names": names},
		OccurredAt: time.Now(),
	}
}

// NewDocumentDeleted marks one stored document removed.
func NewDocumentDeleted(filename string) BaseEvent {
	return BaseEvent{
		Type:       TypeDocumentDeleted,
		Data:       map[string]interface{}{"filename": filename},
		OccurredAt: time.Now(),
	}
}

// NewTranscriptAppended marks a completed question/answer exchange.
func NewTranscriptAppended(turns int) BaseEvent {
	return BaseEvent{
		Type:       TypeTranscriptAppended,
		Data:       map[string]interface{}{"turns": turns},
		OccurredAt: time.Now(),
	}
}
