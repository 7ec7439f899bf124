package domain

import "time"

// Status is one observation of a Minecraft server.
//
// When Reachable is false every other observed field is unknown and must
// not be displayed as a value. When Reachable is true the ping fields are
// valid, but Players may still be nil if the query protocol failed or is
// disabled on the server.
type Status struct {
	Server    string
	Address   string
	Reachable bool

	PlayersOnline int
	PlayersMax    int
	Latency       time.Duration
	Version       string

	// Players is nil when the roster could not be observed.
	Players *Roster

	// Err explains why the server was unreachable.
	Err error
	// QueryErr explains why Players is nil.
	QueryErr error

	CheckedAt time.Time
}

// LatencyMillis returns the latency as fractional milliseconds.
func (s Status) LatencyMillis() float64 {
	return float64(s.Latency) / float64(time.Millisecond)
}
