package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/mcboard/internal/board"
	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/index"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/minecraft"
	"github.com/MrSnakeDoc/mcboard/internal/yunhu"
)

const (
	DefaultPollInterval = 15 * time.Second
	DefaultBoardTTL     = 60 * time.Second
	DefaultConcurrency  = 4
)

// PresenceTracker diffs a roster against the persisted one.
type PresenceTracker interface {
	Track(ctx context.Context, server string, current *domain.Roster) ([]domain.PresenceEvent, error)
}

// PollerOptions tunes a Poller. Zero values fall back to the defaults.
type PollerOptions struct {
	Interval    time.Duration
	BoardTTL    time.Duration
	Concurrency int
}

// Poller runs poll cycles on a fixed interval: fetch every server, track
// rosters, refresh the index, then render and publish every board.
// A server that does not answer the status ping is not tracked in that
// cycle, so an outage never emits LEAVE events or resets the baseline.
type Poller struct {
	servers   []domain.Server
	boards    []domain.Board
	tracked   map[string]bool
	fetcher   minecraft.StatusFetcher
	tracker   PresenceTracker
	index     *index.MemoryIndex
	renderer  *board.Renderer
	publisher yunhu.Publisher
	logger    logger.Logger
	opts      PollerOptions
	now       func() time.Time

	// one cycle at a time, whether from the ticker, a manual trigger or RunCycle
	cycleMu sync.Mutex

	stopCh        chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewPoller creates a poller. manualTrigger may be nil.
func NewPoller(
	servers []domain.Server,
	boards []domain.Board,
	fetcher minecraft.StatusFetcher,
	tracker PresenceTracker,
	idx *index.MemoryIndex,
	renderer *board.Renderer,
	publisher yunhu.Publisher,
	log logger.Logger,
	opts PollerOptions,
	manualTrigger chan struct{},
) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.BoardTTL <= 0 {
		opts.BoardTTL = DefaultBoardTTL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	return &Poller{
		servers:       servers,
		boards:        boards,
		tracked:       trackedServers(boards),
		fetcher:       fetcher,
		tracker:       tracker,
		index:         idx,
		renderer:      renderer,
		publisher:     publisher,
		logger:        log,
		opts:          opts,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// trackedServers lists servers shown on at least one board that tracks
// player changes. Each of them is tracked once per cycle.
func trackedServers(boards []domain.Board) map[string]bool {
	out := make(map[string]bool)
	for _, b := range boards {
		if !b.TrackPlayerChanges {
			continue
		}
		for _, s := range b.Servers {
			out[s] = true
		}
	}
	return out
}

// Start runs a first cycle immediately then keeps polling in the
// background until Stop is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.runLogged(ctx)

	ticker := time.NewTicker(p.opts.Interval)
	go func() {
		defer close(p.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.runLogged(ctx)
			case <-p.manualTrigger:
				p.logger.Info("manual poll triggered")
				p.runLogged(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the loop and waits for an in-flight cycle to finish.
// Only valid after Start.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	<-p.done
}

func (p *Poller) runLogged(ctx context.Context) {
	if _, err := p.RunCycle(ctx); err != nil {
		p.logger.Error("poll cycle finished with store errors", logger.Error(err))
	}
}

// RunCycle performs one complete poll cycle. The returned error joins the
// store errors hit while tracking; publish failures are only counted.
func (p *Poller) RunCycle(ctx context.Context) (index.CycleSummary, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	start := p.now()
	summary := index.CycleSummary{
		ID:        uuid.NewString(),
		StartedAt: start,
		Servers:   len(p.servers),
	}
	log := p.logger

	log.Debug("poll cycle started", logger.String("cycle_id", summary.ID))

	statuses := make([]domain.Status, len(p.servers))
	eventCounts := make([]int, len(p.servers))
	storeErrs := make([]error, len(p.servers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, srv := range p.servers {
		g.Go(func() error {
			st := p.fetcher.Fetch(gctx, srv)
			statuses[i] = st
			p.index.SetStatus(st)

			// an unreachable server keeps its baseline untouched
			if !st.Reachable || !p.tracked[srv.Name] {
				return nil
			}

			events, err := p.tracker.Track(gctx, srv.Name, st.Players)
			if err != nil {
				storeErrs[i] = err
				log.Error("failed to track players",
					logger.String("cycle_id", summary.ID),
					logger.String("server", srv.Name),
					logger.Error(err),
				)
				return nil
			}
			eventCounts[i] = len(events)
			p.index.SetRoster(srv.Name, st.Players)
			p.index.RecordEvents(srv.Name, events)
			return nil
		})
	}
	_ = g.Wait()

	for i, st := range statuses {
		if st.Reachable {
			summary.Reachable++
		}
		summary.Events += eventCounts[i]
		if storeErrs[i] != nil {
			summary.StoreErrors = append(summary.StoreErrors, storeErrs[i].Error())
		}
	}

	for i, b := range p.boards {
		if ctx.Err() != nil {
			break
		}
		if err := p.publish(ctx, summary.ID, i, b); err != nil {
			summary.PublishErrors++
			continue
		}
		summary.Published++
	}

	summary.Duration = p.now().Sub(start)
	p.index.SetLastCycle(summary)

	log.Info("poll cycle completed",
		logger.String("cycle_id", summary.ID),
		logger.Int("servers", summary.Servers),
		logger.Int("reachable", summary.Reachable),
		logger.Int("events", summary.Events),
		logger.Int("published", summary.Published),
		logger.Int("publish_errors", summary.PublishErrors),
		logger.Duration("duration", summary.Duration),
	)

	return summary, errors.Join(storeErrs...)
}

// Views returns what board b currently shows, from the index.
func (p *Poller) Views(b domain.Board) []board.ServerView {
	return board.Views(p.index, b)
}

func (p *Poller) publish(ctx context.Context, cycleID string, i int, b domain.Board) error {
	now := p.now()

	content, err := p.renderer.Render(b, p.Views(b), now)
	if err != nil {
		p.logger.Error("failed to render board",
			logger.String("cycle_id", cycleID),
			logger.Int("board", i),
			logger.Error(err),
		)
		return err
	}

	p.logger.Debug("board content",
		logger.String("cycle_id", cycleID),
		logger.String("chat_id", b.ChatID),
		logger.String("html", content),
	)

	err = p.publisher.SetBoard(ctx, yunhu.Board{
		ChatID:   b.ChatID,
		ChatType: b.ChatType,
		Content:  content,
		ExpireAt: now.Add(p.opts.BoardTTL),
	})
	if err != nil {
		p.logger.Error("failed to publish board",
			logger.String("cycle_id", cycleID),
			logger.String("chat_id", b.ChatID),
			logger.Error(err),
		)
		return err
	}

	p.logger.Info("board published",
		logger.String("cycle_id", cycleID),
		logger.String("chat_id", b.ChatID),
		logger.String("chat_type", b.ChatType),
	)
	return nil
}
