package eventlog

import (
	"context"
	"time"
)

// Event is one journaled settlement event
type Event struct {
	ID        int64                  `json:"id"`
	EventType string                 `json:"event_type"`
	SubjectID *string                `json:"subject_id,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventFilter narrows a journal query. Zero fields match everything.
type EventFilter struct {
	EventType *string
	SubjectID *string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// Repository stores the event journal
type Repository interface {
	// LogEvent appends an event to the journal
	LogEvent(ctx context.Context, eventType string, subjectID *string, payload, metadata map[string]interface{}) error

	// GetEvents returns matching events, newest first
	GetEvents(ctx context.Context, filter EventFilter) ([]Event, error)

	// CleanupOldEvents removes events older than the specified number of days
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}
