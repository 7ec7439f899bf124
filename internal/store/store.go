// Package store defines where last-known rosters live between poll cycles.
//
// Each monitored server owns exactly one persisted roster, keyed by its
// configured name. Backends live in sub-packages (file, redis).
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
)

// ErrCorrupt is returned when persisted data cannot be decoded. Callers
// must not treat it as an empty roster: doing so would fabricate a mass
// leave on the next comparison.
var ErrCorrupt = errors.New("persisted roster data is corrupt")

// RosterStore persists one roster per server.
//
// Load returns an empty, known roster when nothing was stored yet. Save
// replaces only the named server's entry; a nil roster is stored as empty.
// Implementations must be safe for concurrent use.
type RosterStore interface {
	Load(ctx context.Context, server string) (*domain.Roster, error)
	Save(ctx context.Context, server string, roster *domain.Roster) error
	Delete(ctx context.Context, server string) error
	Servers(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Backend() string
}
