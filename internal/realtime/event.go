package realtime

type EventType string

const (
	EventJobCreated  EventType = "job.created"
	EventJobProgress EventType = "job.progress"
	EventJobFailed   EventType = "job.failed"
	EventJobDone     EventType = "job.done"

	EventGenerationProcessing EventType = "generation.processing"
	EventGenerationCompleted  EventType = "generation.completed"
	EventGenerationFailed     EventType = "generation.failed"
)

// Message is what travels over the bus and the SSE stream. Channel is the
// recipient user's id.
type Message struct {
	Channel string    `json:"channel"`
	Event   EventType `json:"event"`
	Data    any       `json:"data,omitempty"`
}
