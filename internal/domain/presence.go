package domain

import "time"

// Action is what a player did between two observations.
type Action string

const (
	ActionJoin  Action = "join"
	ActionLeave Action = "leave"
)

// PresenceEvent records one player joining or leaving a server.
//
// All events produced by one comparison share the same Time.
type PresenceEvent struct {
	Server string    `json:"server"`
	Player string    `json:"player"`
	Action Action    `json:"action"`
	Time   time.Time `json:"time"`
}

// IsJoin reports whether the event is a join.
func (e PresenceEvent) IsJoin() bool {
	return e.Action == ActionJoin
}
