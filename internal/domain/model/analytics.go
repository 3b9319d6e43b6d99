package model

// Event is one client-reported analytics event (page view, quiz start,
// quiz completion). Events are identified by a ULID so the capped list
// stays time-ordered without relying on array position.
type Event struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	TestID string `json:"testId"`
	Source string `json:"source"`
	Time   int64  `json:"time"`
}

const (
	// EventTestComplete marks a finished quiz run.
	EventTestComplete = "test_complete"

	// MaxEvents bounds analytics.json; older events are dropped first.
	MaxEvents = 10000
)
