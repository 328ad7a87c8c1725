package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cementplant-backend/internal/data/db"
	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/http"
	"github.com/yungbote/cementplant-backend/internal/monitor"
	"github.com/yungbote/cementplant-backend/internal/observability"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
	"github.com/yungbote/cementplant-backend/internal/realtime"
	"github.com/yungbote/cementplant-backend/internal/scheduler"
)

const (
	JobRealtime     = "realtime_processing"
	JobOptimization = "optimization_analysis"
	JobHealth       = "equipment_health"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Cfg       Config
	Repos     repos.Set
	Metrics   *observability.Metrics
	Hub       *realtime.Hub
	Monitor   *monitor.Service
	Scheduler *scheduler.Scheduler
	Server    *http.Server

	pg           *db.PostgresService
	bus          realtime.Bus
	fanout       *realtime.Fanout
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelCfg := observability.OtelConfigFromEnv(cfg.LogMode)
	otelShutdown := observability.InitOTel(context.Background(), log, otelCfg)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}
	theDB := pg.DB()

	reposet := repos.NewSet(theDB, log)
	metrics := observability.NewMetrics()

	gen, err := wireGenerator(log, cfg, reposet, metrics)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewHub(log, metrics)
	bus := wireBus(log, cfg)
	fanout := realtime.NewFanout(hub, bus, log)

	mon := monitor.NewService(log, cfg.Monitor, reposet, gen, fanout, metrics)

	sched, err := wireScheduler(log, cfg, mon, metrics)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	server, err := wireServer(log, cfg, otelCfg, theDB, reposet, hub, mon, sched, metrics)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Metrics:      metrics,
		Hub:          hub,
		Monitor:      mon,
		Scheduler:    sched,
		Server:       server,
		pg:           pg,
		bus:          bus,
		fanout:       fanout,
		otelShutdown: otelShutdown,
	}, nil
}

// Start subscribes to the broadcast bus and starts the job tickers.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.fanout.Start(ctx); err != nil {
		a.Log.Warn("Broadcast bus unavailable, delivering locally", "error", err)
		a.bus = nil
	}
	a.Scheduler.Start(ctx)
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run(":" + a.Cfg.Port)
}

// Close stops jobs, drains HTTP, closes sockets and the store, in that order.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.Hub != nil {
		a.Hub.CloseAll()
	}
	if a.bus != nil {
		_ = a.bus.Close()
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("Postgres close", "error", err)
		}
	}
	if a.otelShutdown != nil {
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = a.otelShutdown(sctx)
		cancel()
	}
	a.Log.Sync()
}
