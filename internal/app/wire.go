package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/http"
	httpH "github.com/yungbote/cementplant-backend/internal/http/handlers"
	"github.com/yungbote/cementplant-backend/internal/monitor"
	"github.com/yungbote/cementplant-backend/internal/observability"
	"github.com/yungbote/cementplant-backend/internal/platform/breaker"
	"github.com/yungbote/cementplant-backend/internal/platform/gemini"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
	"github.com/yungbote/cementplant-backend/internal/realtime"
	"github.com/yungbote/cementplant-backend/internal/recommend"
	"github.com/yungbote/cementplant-backend/internal/scheduler"
)

func wireGenerator(log *logger.Logger, cfg Config, set repos.Set, metrics *observability.Metrics) (*recommend.Generator, error) {
	rules := recommend.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := recommend.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		rules = loaded
		log.Info("Loaded rule table", "path", cfg.RulesFile, "rules", len(rules))
	}

	var text recommend.TextGenerator
	if cfg.AIEnabled() {
		client, err := gemini.NewClient(log, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		text = breaker.WrapText(client, breaker.New("gemini", cfg.Breaker, log))
	} else {
		log.Warn("GEMINI_API_KEY not set, AI recommendations disabled")
	}

	return recommend.NewGenerator(log, recommend.Config{
		Rules:      rules,
		Cooldown:   cfg.RecommendationCooldown,
		AITimeout:  cfg.AITimeout,
		CostPerKWh: cfg.Monitor.Economics.CostPerKWh,
	}, set.Recommendations, text, metrics), nil
}

// wireBus returns nil when Redis is not configured or not reachable; the
// fanout then delivers to the local hub only.
func wireBus(log *logger.Logger, cfg Config) realtime.Bus {
	if !cfg.RedisEnabled {
		return nil
	}
	bus, err := realtime.NewRedisBus(log)
	if err != nil {
		log.Warn("Redis bus init failed, broadcasting locally", "error", err)
		return nil
	}
	return bus
}

func wireScheduler(log *logger.Logger, cfg Config, mon *monitor.Service, metrics *observability.Metrics) (*scheduler.Scheduler, error) {
	s := scheduler.New(log, metrics)
	if err := s.Add(JobRealtime, cfg.RealtimeInterval, 0, mon.RunRealtime); err != nil {
		return nil, err
	}
	if err := s.Add(JobOptimization, cfg.OptimizationInterval, 0, mon.RunOptimization); err != nil {
		return nil, err
	}
	if err := s.Add(JobHealth, cfg.HealthInterval, 0, mon.RunEquipmentHealth); err != nil {
		return nil, err
	}
	return s, nil
}

func wireServer(
	log *logger.Logger,
	cfg Config,
	otelCfg observability.OtelConfig,
	theDB *gorm.DB,
	set repos.Set,
	hub *realtime.Hub,
	mon *monitor.Service,
	sched *scheduler.Scheduler,
	metrics *observability.Metrics,
) (*http.Server, error) {
	log.Info("Wiring handlers...")
	sqlDB, err := theDB.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	serviceName := ""
	if otelCfg.Enabled {
		serviceName = otelCfg.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		CORSOrigins:      cfg.CORSOrigins,
		ServiceName:      serviceName,
		HealthHandler:    httpH.NewHealthHandler(sqlDB),
		RealtimeHandler:  httpH.NewRealtimeHandler(log, hub, mon, cfg.CORSOrigins, cfg.WSSendBuffer),
		DataHandler:      httpH.NewDataHandler(set.Readings, mon),
		AIHandler:        httpH.NewAIHandler(mon, set.Recommendations, set.Optimizations),
		AnalyticsHandler: httpH.NewAnalyticsHandler(mon),
		SchedulerHandler: httpH.NewSchedulerHandler(sched),
	}), nil
}
