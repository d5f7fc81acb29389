package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType classifies a dashboard interaction.
type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventTabShown         EventType = "tab_shown"
	EventSelectionChanged EventType = "selection_changed"
	EventSunburstZoom     EventType = "sunburst_zoom"
	EventChartError       EventType = "chart_error"
)

// InteractionEvent records one user action against a session.
type InteractionEvent struct {
	SessionID  string    `json:"session_id"`
	Type       EventType `json:"type"`
	Chart      ChartKind `json:"chart,omitempty"`
	Value      string    `json:"value,omitempty"`
	Node       int       `json:"node,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewInteractionEvent stamps an event with the package clock.
func NewInteractionEvent(sessionID string, typ EventType, chart ChartKind, value string) InteractionEvent {
	return InteractionEvent{
		SessionID:  sessionID,
		Type:       typ,
		Chart:      chart,
		Value:      value,
		OccurredAt: clock.Now().UTC(),
	}
}

// OutputEvent is the serialized form destined for the event sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeInteractionEvent marshals an event for the sink. The session id is
// the message key so one session's events stay ordered on a partition.
func SerializeInteractionEvent(e InteractionEvent) (OutputEvent, error) {
	if e.SessionID == "" || e.Type == "" {
		return OutputEvent{}, fmt.Errorf("serialize interaction event: session id and type are required")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize interaction event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(e.SessionID),
		Value: data,
		Headers: map[string]string{
			"event_type":  string(e.Type),
			"occurred_at": e.OccurredAt.Format(time.RFC3339),
		},
	}, nil
}
