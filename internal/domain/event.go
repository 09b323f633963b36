package domain

import "time"

// EventState is the derived lifecycle state of an event.
// It is computed from the clock, never stored, so it cannot drift.
type EventState string

const (
	// EventUpcoming means the event has not yet ended.
	EventUpcoming EventState = "upcoming"
	// EventPassed means the event end time has been reached.
	EventPassed EventState = "passed"
)

// Event is a scheduled activity with a time range and one or more owners.
type Event struct {
	Timestamps
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}

// State derives the event state at the given instant.
// An event is upcoming strictly before EndAt; at EndAt it is passed.
func (e *Event) State(now time.Time) EventState {
	if now.Before(e.EndAt) {
		return EventUpcoming
	}
	return EventPassed
}

// ValidRange reports whether the event time range is well-formed.
func (e *Event) ValidRange() bool {
	return e.EndAt.After(e.StartAt)
}

// EventOwnership links an owning user to an event. Unique per (UserID, EventID).
// An event may have multiple co-owners; the creator is always the first.
type EventOwnership struct {
	Timestamps
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}
