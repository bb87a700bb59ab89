package eventlog

// Payload keys searched, in order, for the subject of a journal entry
var subjectKeys = []string{"match_id", "proposal_id", "pool_id", "id"}

// Query limits
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Log messages - service events
const (
	LogMsgEventPayloadNotObject = "Event payload is not an object, skipping journal"
	LogMsgFailedToLogEvent      = "Failed to journal event"
	LogMsgEventLogged           = "Event journaled"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting event journal cleanup"
	LogMsgCleanupJobFailed    = "Event journal cleanup failed"
	LogMsgCleanupJobCompleted = "Event journal cleanup completed"
)

// Error contexts
const (
	ErrContextEncodePayload = "failed to encode event payload"
	ErrContextDecodePayload = "failed to decode event payload"
	ErrContextListEvents    = "failed to list journal events"
)
