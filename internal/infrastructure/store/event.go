package store

import (
	"encoding/json"
	"time"
)

// Event is the envelope every domain event travels in, whether sitting
// in the log, crossing Kafka, or arriving via a Kinesis stream record.
// Data holds the type-specific payload as raw JSON.
type Event struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
}

// MarshalJSON produces the wire encoding used on the event bus
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct{ Alias }{Alias: Alias(e)})
}
