package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/MacMoment/coding/internal/data/db"
	fchttp "github.com/MacMoment/coding/internal/http"
	"github.com/MacMoment/coding/internal/observability"
	"github.com/MacMoment/coding/internal/platform/logger"
	"github.com/MacMoment/coding/internal/realtime"
	"github.com/MacMoment/coding/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Server   *fchttp.Server

	otelShutdown func(context.Context) error
}

// RunOptions selects which halves of the process Run starts.
type RunOptions struct {
	API    bool
	Worker bool
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	theDB, err := db.Open(log, cfg.DB())
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	var eventBus bus.Bus
	if cfg.RedisAddr != "" {
		eventBus, err = bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
		if err != nil {
			return nil, fmt.Errorf("init redis bus: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR is not set; realtime events stay in this process")
		eventBus = bus.NewMemoryBus()
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.Init(log)
	}

	otelCfg := observability.OtelConfigFromEnv(cfg.ServiceName)
	otelCfg.Enabled = cfg.OtelEnabled
	shutdown := observability.InitOTel(ctx, log, otelCfg)

	hub := realtime.NewHub(log)
	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, eventBus)
	if err != nil {
		_ = eventBus.Close()
		return nil, err
	}
	handlerset := wireHandlers(theDB, log, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Hub:          hub,
		Bus:          eventBus,
		Metrics:      metrics,
		Server:       wireServer(log, cfg, metrics, handlerset, middleware),
		otelShutdown: shutdown,
	}, nil
}

func (a *App) Migrate() error {
	a.Log.Info("Running migrations...")
	if err := db.AutoMigrateAll(a.DB); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Run blocks until ctx is done or one of the started components fails.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if !opts.API && !opts.Worker {
		return fmt.Errorf("nothing to run")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.startCollectors(gctx)

	if opts.API {
		if err := a.Bus.StartForwarder(gctx, a.Hub.Broadcast); err != nil {
			return fmt.Errorf("start event forwarder: %w", err)
		}
		g.Go(func() error {
			return a.Server.Run(gctx, a.Cfg.HTTPAddr)
		})
	}
	if opts.Worker {
		g.Go(func() error {
			return a.Services.JobWorker.Run(gctx)
		})
	}
	return g.Wait()
}

func (a *App) startCollectors(ctx context.Context) {
	if a.Metrics == nil {
		return
	}
	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	a.Metrics.StartJobQueueCollector(ctx, a.Log, a.DB)
	if a.Cfg.RedisAddr != "" {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.RedisAddr)
	}
	// A separate listener serves worker-only processes.
	a.Metrics.StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("close event bus", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	a.Log.Sync()
}
