package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mcboard/internal/board"
	"github.com/MrSnakeDoc/mcboard/internal/config"
	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/index"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/minecraft"
	"github.com/MrSnakeDoc/mcboard/internal/redis"
	"github.com/MrSnakeDoc/mcboard/internal/scheduler"
	"github.com/MrSnakeDoc/mcboard/internal/sources/servers"
	"github.com/MrSnakeDoc/mcboard/internal/store"
	filestore "github.com/MrSnakeDoc/mcboard/internal/store/file"
	redisstore "github.com/MrSnakeDoc/mcboard/internal/store/redis"
	"github.com/MrSnakeDoc/mcboard/internal/tracker"
	"github.com/MrSnakeDoc/mcboard/internal/utils"
	"github.com/MrSnakeDoc/mcboard/internal/version"
	"github.com/MrSnakeDoc/mcboard/internal/yunhu"
)

// Options carries what the command line decides.
type Options struct {
	LogMode logger.Mode
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	servers     []domain.Server
	boards      []domain.Board
	store       store.RosterStore
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	poller      *scheduler.Poller
	warmup      *scheduler.Warmup
	pruner      *scheduler.Pruner
	server      *httpserver.Server
}

// New loads the configuration and wires every component. Startup problems
// (bad servers file, Redis unreachable) are returned as errors.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := config.Load()

	loggerClient, logPath, err := logger.NewWithOptions(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLog,
		Dir:    cfg.LogDir,
		Mode:   opts.LogMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logPath != "" {
		loggerClient.Info("logging to file",
			logger.String("path", logPath),
			logger.String("mode", opts.LogMode.String()))
	}

	srvs, boards, err := servers.LoadFile(cfg.ServersFile)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("servers file loaded",
		logger.String("path", cfg.ServersFile),
		logger.Int("servers", len(srvs)),
		logger.Int("boards", len(boards)))

	a := &App{
		cfg:      cfg,
		logger:   loggerClient,
		servers:  srvs,
		boards:   boards,
		memIndex: index.NewMemoryIndex(cfg.EventHistory),
	}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	pollTrigger := make(chan struct{}, 1)
	renderer := board.NewRenderer(time.Local)

	a.poller = scheduler.NewPoller(
		srvs,
		boards,
		minecraft.NewFetcher(cfg.StatusTimeout, loggerClient),
		tracker.New(a.store, loggerClient),
		a.memIndex,
		renderer,
		yunhu.NewClient(cfg.YunhuBaseURL, cfg.YunhuToken, yunhu.WithRate(cfg.PublishRate)),
		loggerClient,
		scheduler.PollerOptions{
			Interval:    cfg.PollInterval,
			BoardTTL:    cfg.BoardTTL,
			Concurrency: cfg.MaxConcurrency,
		},
		pollTrigger,
	)

	a.warmup = scheduler.NewWarmup(a.store, a.memIndex, srvs, loggerClient)

	if cfg.PruneInterval > 0 {
		a.pruner = scheduler.NewPruner(a.store, a.memIndex, srvs, loggerClient, cfg.PruneInterval)
	}

	if cfg.ListenAddr != "" {
		a.server = httpserver.New(cfg.ListenAddr, deps.Deps{
			Logger:       loggerClient,
			StartTime:    time.Now(),
			Build:        version.Get(),
			TimeNow:      time.Now,
			AllowedCIDRS: cfg.AllowedCIDRS,
			TrustProxy:   cfg.TrustProxy,
			Store:        a.store,
			MemoryIndex:  a.memIndex,
			Renderer:     renderer,
			Servers:      srvs,
			Boards:       boards,
			PollTrigger:  pollTrigger,
		})
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.cfg.Store {
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(a.cfg), a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = client
		a.store = redisstore.NewStore(client)
	default:
		fs := filestore.New(a.cfg.RosterFile)
		a.store = fs
		a.logger.Info("using file roster store",
			logger.String("path", fs.Path()))
	}
	return nil
}

// Run polls until SIGINT/SIGTERM or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	info := version.Get()
	a.logger.Info("🚀 Starting mcboard",
		logger.String("version", info.Version),
		logger.String("commit", info.Commit),
		logger.String("go", info.GoVersion),
		logger.Duration("poll_interval", a.cfg.PollInterval))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.Close()

	if _, err := a.warmup.Run(ctx); err != nil {
		return fmt.Errorf("failed to load persisted rosters: %w", err)
	}

	if a.pruner != nil {
		a.pruner.Start(ctx)
		a.logger.Info("roster pruner started",
			logger.Duration("interval", a.cfg.PruneInterval))
	}

	errCh := make(chan error, 1)
	if a.server != nil {
		go func() {
			if err := a.server.Start(); err != nil {
				errCh <- fmt.Errorf("http server error: %w", err)
			}
		}()
	}

	// first cycle runs before Start returns
	a.poller.Start(ctx)
	a.logger.Info("poller started",
		logger.Int("servers", len(a.servers)),
		logger.Int("boards", len(a.boards)))

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.poller.Stop()
	if a.pruner != nil {
		a.pruner.Stop()
	}

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("failed to stop server: %w", err))
		}
	}

	if runErr == nil {
		a.logger.Info("✅ mcboard stopped cleanly")
	}
	return runErr
}

// RunOnce performs a single poll cycle and reports store errors.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.Close()

	if _, err := a.warmup.Run(ctx); err != nil {
		return fmt.Errorf("failed to load persisted rosters: %w", err)
	}

	summary, err := a.poller.RunCycle(ctx)
	if err != nil {
		return err
	}
	if summary.PublishErrors > 0 {
		a.logger.Warn("some boards were not published",
			logger.Int("publish_errors", summary.PublishErrors))
	}
	return nil
}

// Close releases the Redis client and flushes the logger.
func (a *App) Close() {
	if a.redisClient != nil {
		utils.CloseLogged(a.redisClient, "redis", a.logger)
		a.redisClient = nil
	}
	_ = a.logger.Sync()
}
