// Package tracker turns consecutive roster observations into join and
// leave events.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/store"
)

// Tracker compares a server's current roster with the last persisted one
// and persists the current roster as the new baseline.
//
// Track calls for the same server are serialized; calls for different
// servers run concurrently.
type Tracker struct {
	store  store.RosterStore
	logger logger.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a tracker over rosterStore.
func New(rosterStore store.RosterStore, log logger.Logger) *Tracker {
	return &Tracker{
		store:  rosterStore,
		logger: log,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Track diffs current against the stored roster for server.
//
// A nil current roster (not observed) counts as empty, so everybody who was
// online is reported as leaving. The current roster is saved even when
// nothing changed. Events are returned joins first then leaves, each group
// sorted by player name, all sharing the same timestamp.
//
// The only errors are those of the underlying store.
func (t *Tracker) Track(ctx context.Context, server string, current *domain.Roster) ([]domain.PresenceEvent, error) {
	lock := t.lockFor(server)
	lock.Lock()
	defer lock.Unlock()

	current = current.OrEmpty()

	previous, err := t.store.Load(ctx, server)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous roster for %s: %w", server, err)
	}

	now := t.now()
	joined := current.Minus(previous)
	left := previous.Minus(current)

	events := make([]domain.PresenceEvent, 0, len(joined)+len(left))
	for _, player := range joined {
		events = append(events, domain.PresenceEvent{Server: server, Player: player, Action: domain.ActionJoin, Time: now})
	}
	for _, player := range left {
		events = append(events, domain.PresenceEvent{Server: server, Player: player, Action: domain.ActionLeave, Time: now})
	}

	if err := t.store.Save(ctx, server, current); err != nil {
		return nil, fmt.Errorf("failed to save roster for %s: %w", server, err)
	}

	if len(events) > 0 {
		t.logger.Info("player presence changed",
			logger.String("server", server),
			logger.Strings("joined", joined),
			logger.Strings("left", left))
	} else {
		t.logger.Debug("player presence unchanged",
			logger.String("server", server),
			logger.Int("online", current.Len()))
	}

	return events, nil
}

// lockFor returns the mutex guarding server, creating it on first use.
func (t *Tracker) lockFor(server string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[server]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[server] = lock
	}
	return lock
}
