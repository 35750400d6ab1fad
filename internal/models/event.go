package models

import "time"

// EventType identifies a notification pushed to display clients
type EventType string

const (
	EventDrawStarted   EventType = "draw_started"
	EventCountdownTick EventType = "countdown_tick"
	EventDrawFinalized EventType = "draw_finalized"
	EventDrawCancelled EventType = "draw_cancelled"
	EventRosterReset   EventType = "roster_reset"
	EventPersistFailed EventType = "persist_failed"
)

// Event is a single notification for the presentation layer
type Event struct {
	Type    EventType   `json:"type"`
	Tier    string      `json:"tier,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// NewEvent creates an Event stamped with the current time
func NewEvent(eventType EventType, tier string, payload interface{}) Event {
	return Event{
		Type:    eventType,
		Tier:    tier,
		Payload: payload,
		At:      time.Now(),
	}
}
