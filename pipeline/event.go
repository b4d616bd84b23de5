package pipeline

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// EventType names a pipeline event. The value is the SSE event name.
type EventType string

const (
	EventStarted               EventType = "started"
	EventVersionCreated        EventType = "version_created"
	EventNormalizationComplete EventType = "normalization_complete"
	EventResearchStarted       EventType = "research_started"
	EventSourceFound           EventType = "source_found"
	EventResearchComplete      EventType = "research_complete"
	EventGenerationStarted     EventType = "generation_started"
	EventAssertionGenerated    EventType = "assertion_generated"
	EventAssertionValidated    EventType = "assertion_validated"
	EventValidationComplete    EventType = "validation_complete"
	EventPersistenceComplete   EventType = "persistence_complete"
	EventCompleted             EventType = "completed"
	EventError                 EventType = "error"
)

const previewLength = 100

// Event is one step of a run. Events are not modified after emission.
type Event struct {
	Type      EventType              `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

func newEvent(t EventType, data map[string]interface{}) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// SSE renders the event in server-sent events wire format
func (e Event) SSE() (string, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return "", fmt.Errorf("encode %s event: %w", e.Type, err)
	}
	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, data), nil
}

// preview truncates s to previewLength characters followed by "..."
func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLength]) + "..."
}
