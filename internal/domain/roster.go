package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Roster is the set of player names observed online on one server at one
// instant. Player names are compared case-sensitively.
//
// A nil *Roster means the roster is unknown (the query failed or is
// disabled). That is not the same thing as an empty roster, which means the
// server answered with zero players online. All read methods accept a nil
// receiver and behave as if the roster were empty.
type Roster struct {
	players mapset.Set[string]
}

// NewRoster builds a roster from names. Duplicates collapse.
func NewRoster(names ...string) *Roster {
	return &Roster{players: mapset.NewThreadUnsafeSet(names...)}
}

// EmptyRoster returns a known roster with nobody online.
func EmptyRoster() *Roster {
	return NewRoster()
}

// Known reports whether the roster was actually observed.
func (r *Roster) Known() bool {
	return r != nil
}

// OrEmpty coerces an unknown roster to a known empty one.
func (r *Roster) OrEmpty() *Roster {
	if r == nil {
		return EmptyRoster()
	}
	return r
}

// Len returns the number of players in the roster.
func (r *Roster) Len() int {
	if r == nil || r.players == nil {
		return 0
	}
	return r.players.Cardinality()
}

// Names returns the players sorted lexicographically.
func (r *Roster) Names() []string {
	if r == nil || r.players == nil {
		return []string{}
	}
	names := r.players.ToSlice()
	sort.Strings(names)
	return names
}

// Minus returns the sorted names present in r but not in other.
func (r *Roster) Minus(other *Roster) []string {
	if r.Len() == 0 {
		return []string{}
	}
	if other.Len() == 0 {
		return r.Names()
	}
	diff := r.players.Difference(other.players).ToSlice()
	sort.Strings(diff)
	return diff
}

// Equal reports whether both rosters hold the same players.
// Unknown rosters compare equal to empty ones.
func (r *Roster) Equal(other *Roster) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	return r.players.Equal(other.players)
}

// MarshalJSON encodes the roster as a sorted array of names.
func (r *Roster) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Names())
}

// UnmarshalJSON decodes an array of names. null is rejected, a persisted
// roster is always an array.
func (r *Roster) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("roster must be an array of names, got null")
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	r.players = mapset.NewThreadUnsafeSet(names...)
	return nil
}
