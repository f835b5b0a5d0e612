package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampFormat is the wire format of Event.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// payload is the JSON form of an Event on message queues.
type payload struct {
	Category  string         `json:"category"`
	Timestamp string         `json:"timestamp"`
	ActorID   string         `json:"actor_id"`
	Subject   string         `json:"subject"`
	Action    string         `json:"action"`
	Decision  string         `json:"decision,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
}

// Encode serializes an event. An empty category is derived from the action.
func Encode(event Event) ([]byte, error) {
	category := event.Category
	if category == "" {
		category = AuditEvent(event.Action).Category()
	}
	value, err := json.Marshal(payload{
		Category:  string(category),
		Timestamp: event.Timestamp.UTC().Format(TimestampFormat),
		ActorID:   event.ActorID,
		Subject:   event.Subject,
		Action:    event.Action,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		Counts:    event.Counts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal audit event: %w", err)
	}
	return value, nil
}

// Decode parses an event written by Encode. A missing or malformed
// timestamp is reported as an error; an event without an action is invalid.
func Decode(data []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, fmt.Errorf("unmarshal audit event: %w", err)
	}
	if p.Action == "" {
		return Event{}, fmt.Errorf("audit event has no action")
	}
	ts, err := time.Parse(TimestampFormat, p.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	category := EventCategory(p.Category)
	if category == "" {
		category = AuditEvent(p.Action).Category()
	}
	return Event{
		Category:  category,
		Timestamp: ts,
		ActorID:   p.ActorID,
		Subject:   p.Subject,
		Action:    p.Action,
		Decision:  p.Decision,
		Reason:    p.Reason,
		RequestID: p.RequestID,
		Counts:    p.Counts,
	}, nil
}
