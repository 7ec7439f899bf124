package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/index"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/store"
)

// Pruner removes persisted rosters of servers that are no longer configured
type Pruner struct {
	store    store.RosterStore
	index    *index.MemoryIndex
	keep     map[string]bool
	names    []string
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewPruner creates a new pruner
func NewPruner(
	rosterStore store.RosterStore,
	idx *index.MemoryIndex,
	servers []domain.Server,
	log logger.Logger,
	interval time.Duration,
) *Pruner {
	keep := make(map[string]bool, len(servers))
	names := make([]string, 0, len(servers))
	for _, s := range servers {
		keep[s.Name] = true
		names = append(names, s.Name)
	}

	return &Pruner{
		store:    rosterStore,
		index:    idx,
		keep:     keep,
		names:    names,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic pruning process
func (pr *Pruner) Start(ctx context.Context) {
	// Run immediately on start
	if _, err := pr.Prune(ctx); err != nil {
		pr.logger.Warn("initial prune failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(pr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := pr.Prune(ctx); err != nil {
					pr.logger.Error("prune failed",
						logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the pruner
func (pr *Pruner) Stop() {
	close(pr.stopCh)
}

// Prune deletes stale entries and returns their names
func (pr *Pruner) Prune(ctx context.Context) ([]string, error) {
	stored, err := pr.store.Servers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list persisted rosters: %w", err)
	}

	var deleted []string
	for _, name := range stored {
		if pr.keep[name] {
			continue
		}
		if err := pr.store.Delete(ctx, name); err != nil {
			pr.logger.Warn("failed to delete stale roster",
				logger.String("server", name),
				logger.Error(err))
			continue
		}
		deleted = append(deleted, name)

		pr.logger.Info("pruned stale roster",
			logger.String("server", name))
	}

	pr.index.Retain(pr.names)

	if len(deleted) == 0 {
		pr.logger.Debug("no stale rosters to prune")
	}
	return deleted, nil
}
