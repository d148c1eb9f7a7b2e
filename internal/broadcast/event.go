// Package broadcast is the cross-tab notification channel. One tab publishes
// a small typed event after changing shared state; sibling tabs react by
// refreshing instead of waiting for their next poll. Delivery is advisory:
// at-most-once, no acknowledgement, no replay. A missed event only delays a
// refresh until the next poll.
package broadcast

import (
	"time"

	"github.com/google/uuid"
)

// Type groups events by the state they invalidate.
type Type string

const (
	// TypeContestUpdate signals that contest state changed (admin action or
	// an observed phase transition).
	TypeContestUpdate Type = "contest-update"
	// TypeProblemsUpdate signals that the problem set changed.
	TypeProblemsUpdate Type = "problems-update"
)

// Actions carried by contest-update events.
const (
	ActionSchedule        = "schedule"
	ActionStart           = "start"
	ActionStop            = "stop"
	ActionReset           = "reset"
	ActionAddTime         = "add-time"
	ActionAddPrecountdown = "add-precountdown-time"
	ActionVisibility      = "visibility"
	ActionTransition      = "transition"
)

// Actions carried by problems-update events.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is the payload written to the broadcast channel.
type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Action    string `json:"action"`
	Source    string `json:"source"`
	Timestamp int64  `json:"ts"`
}

// New builds an event stamped with a fresh ID and the given wall time.
// Source identifies the publishing tab so subscribers can skip their own
// events.
func New(typ Type, action, source string, now time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Action:    action,
		Source:    source,
		Timestamp: now.UnixMilli(),
	}
}

// NewSource returns a fresh tab identity.
func NewSource() string {
	return uuid.New().String()
}

// Age returns how long ago the event was published according to now.
func (e Event) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(e.Timestamp))
}
