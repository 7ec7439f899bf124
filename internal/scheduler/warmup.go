package scheduler

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/index"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/store"
)

// Warmup loads the persisted roster of every configured server into the
// memory index on startup
type Warmup struct {
	store   store.RosterStore
	index   *index.MemoryIndex
	servers []domain.Server
	logger  logger.Logger
}

// NewWarmup creates a new warmup
func NewWarmup(
	rosterStore store.RosterStore,
	idx *index.MemoryIndex,
	servers []domain.Server,
	log logger.Logger,
) *Warmup {
	return &Warmup{
		store:   rosterStore,
		index:   idx,
		servers: servers,
		logger:  log,
	}
}

// Run returns the number of rosters loaded. Corrupt entries are logged and
// skipped; any other store error aborts.
func (w *Warmup) Run(ctx context.Context) (int, error) {
	w.logger.Info("loading persisted rosters",
		logger.String("backend", w.store.Backend()))

	loaded := 0
	for _, srv := range w.servers {
		roster, err := w.store.Load(ctx, srv.Name)
		if errors.Is(err, store.ErrCorrupt) {
			w.logger.Warn("persisted roster is corrupt",
				logger.String("server", srv.Name),
				logger.Error(err))
			continue
		}
		if err != nil {
			return loaded, err
		}

		w.index.SetRoster(srv.Name, roster)
		loaded++
	}

	w.logger.Info("persisted rosters loaded",
		logger.Int("count", loaded))

	return loaded, nil
}
