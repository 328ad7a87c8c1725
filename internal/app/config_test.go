package app

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"REALTIME_INTERVAL", "OPTIMIZATION_INTERVAL", "EQUIPMENT_HEALTH_INTERVAL", "GEMINI_API_KEY", "REDIS_ADDR", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RealtimeInterval != 15*time.Second || cfg.OptimizationInterval != 15*time.Minute || cfg.HealthInterval != 4*time.Hour {
		t.Fatalf("unexpected intervals %s %s %s", cfg.RealtimeInterval, cfg.OptimizationInterval, cfg.HealthInterval)
	}
	if cfg.AIEnabled() || cfg.RedisEnabled {
		t.Fatalf("optional integrations should be off by default")
	}
	if cfg.Monitor.AlertMinPriority != 6 || cfg.Monitor.Economics.TargetSEC != 25 {
		t.Fatalf("unexpected monitor defaults %+v", cfg.Monitor)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("REALTIME_INTERVAL", "5s")
	t.Setenv("OPTIMIZATION_INTERVAL", "600")
	t.Setenv("CORS_ORIGINS", "https://plant.example.com, https://ops.example.com")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.RealtimeInterval != 5*time.Second || cfg.OptimizationInterval != 10*time.Minute {
		t.Fatalf("overrides ignored: %s %s", cfg.RealtimeInterval, cfg.OptimizationInterval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://ops.example.com" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
	if !cfg.AIEnabled() || !cfg.RedisEnabled {
		t.Fatalf("integrations should be enabled")
	}
}

func TestConfigValidation(t *testing.T) {
	t.Setenv("ALERT_MIN_PRIORITY", "11")
	if _, err := LoadConfig(); err == nil || !strings.Contains(err.Error(), "ALERT_MIN_PRIORITY") {
		t.Fatalf("expected priority error, got %v", err)
	}

	t.Setenv("ALERT_MIN_PRIORITY", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.HealthInterval = 0
	if err := cfg.validate(); err == nil {
		t.Fatalf("zero interval should be rejected")
	}
}
