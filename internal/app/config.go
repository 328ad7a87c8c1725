package app

import (
	"fmt"
	"time"

	"github.com/yungbote/cementplant-backend/internal/kpi"
	"github.com/yungbote/cementplant-backend/internal/monitor"
	"github.com/yungbote/cementplant-backend/internal/platform/breaker"
	"github.com/yungbote/cementplant-backend/internal/platform/envutil"
	"github.com/yungbote/cementplant-backend/internal/platform/gemini"
)

type Config struct {
	LogMode     string
	Port        string
	AutoMigrate bool
	CORSOrigins []string

	RealtimeInterval     time.Duration
	OptimizationInterval time.Duration
	HealthInterval       time.Duration

	RecommendationCooldown time.Duration
	AITimeout              time.Duration
	RulesFile              string

	RedisEnabled bool
	WSSendBuffer int

	Monitor monitor.Config
	Gemini  gemini.Config
	Breaker breaker.Config
}

func LoadConfig() (Config, error) {
	def := monitor.DefaultConfig()
	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8000"),
		AutoMigrate: envutil.Bool("DB_AUTO_MIGRATE", false),
		CORSOrigins: envutil.List("CORS_ORIGINS", nil),

		RealtimeInterval:     envutil.Duration("REALTIME_INTERVAL", 15*time.Second),
		OptimizationInterval: envutil.Duration("OPTIMIZATION_INTERVAL", 15*time.Minute),
		HealthInterval:       envutil.Duration("EQUIPMENT_HEALTH_INTERVAL", 4*time.Hour),

		RecommendationCooldown: envutil.Duration("RECOMMENDATION_COOLDOWN", 15*time.Minute),
		AITimeout:              envutil.Duration("AI_TIMEOUT", 20*time.Second),
		RulesFile:              envutil.String("RULES_FILE", ""),

		RedisEnabled: envutil.String("REDIS_ADDR", "") != "",
		WSSendBuffer: envutil.Int("WS_SEND_BUFFER", 16),

		Monitor: monitor.Config{
			UtilitiesLimit:      envutil.Int("UTILITIES_LIMIT", def.UtilitiesLimit),
			RecommendationLimit: envutil.Int("SNAPSHOT_RECOMMENDATION_LIMIT", def.RecommendationLimit),
			Economics: kpi.Economics{
				TargetSEC:   envutil.Float("TARGET_SEC_KWH_T", def.Economics.TargetSEC),
				CostPerKWh:  envutil.Float("ENERGY_COST_PER_KWH", def.Economics.CostPerKWh),
				CO2KgPerKWh: envutil.Float("CO2_KG_PER_KWH", def.Economics.CO2KgPerKWh),
			},
			ModelConfidence:  envutil.Float("MODEL_CONFIDENCE", def.ModelConfidence),
			HealthThreshold:  envutil.Float("EQUIPMENT_HEALTH_THRESHOLD", def.HealthThreshold),
			HealthCooldown:   envutil.Duration("EQUIPMENT_HEALTH_COOLDOWN", def.HealthCooldown),
			AlertMinPriority: envutil.Int("ALERT_MIN_PRIORITY", def.AlertMinPriority),
		},
		Gemini: gemini.ConfigFromEnv(),
		Breaker: breaker.Config{
			MaxFailures:  envutil.Int("AI_BREAKER_MAX_FAILURES", 5),
			ResetTimeout: envutil.Duration("AI_BREAKER_RESET", 30*time.Second),
		},
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	for name, d := range map[string]time.Duration{
		"REALTIME_INTERVAL":         c.RealtimeInterval,
		"OPTIMIZATION_INTERVAL":     c.OptimizationInterval,
		"EQUIPMENT_HEALTH_INTERVAL": c.HealthInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.RecommendationCooldown < 0 {
		return fmt.Errorf("RECOMMENDATION_COOLDOWN must not be negative")
	}
	if p := c.Monitor.AlertMinPriority; p < 1 || p > 10 {
		return fmt.Errorf("ALERT_MIN_PRIORITY must be 1..10, got %d", p)
	}
	if e := c.Monitor.Economics; e.TargetSEC <= 0 || e.CostPerKWh < 0 || e.CO2KgPerKWh < 0 {
		return fmt.Errorf("invalid economics %+v", e)
	}
	return nil
}

// AIEnabled reports whether a Gemini key is configured.
func (c Config) AIEnabled() bool { return c.Gemini.APIKey != "" }
