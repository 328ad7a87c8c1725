// Package monitor runs the plant pipeline: collect the latest rows, compute
// KPIs, generate recommendations, persist, and broadcast a snapshot.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
	"github.com/yungbote/cementplant-backend/internal/observability"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	perr "github.com/yungbote/cementplant-backend/internal/pkg/errors"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
	"github.com/yungbote/cementplant-backend/internal/realtime"
	"github.com/yungbote/cementplant-backend/internal/recommend"
)

type Config struct {
	UtilitiesLimit      int
	RecommendationLimit int
	Economics           kpi.Economics
	ModelConfidence     float64
	// HealthThreshold is the equipment health score below which a maintenance
	// recommendation is raised.
	HealthThreshold float64
	HealthCooldown  time.Duration
	// AlertMinPriority is the lowest priority pushed to alert subscribers.
	AlertMinPriority int
}

func DefaultConfig() Config {
	return Config{
		UtilitiesLimit:      10,
		RecommendationLimit: 5,
		Economics:           kpi.DefaultEconomics(),
		ModelConfidence:     0.92,
		HealthThreshold:     70,
		HealthCooldown:      24 * time.Hour,
		AlertMinPriority:    6,
	}
}

type Service struct {
	log       *logger.Logger
	cfg       Config
	collector *kpi.Collector
	readings  repos.ReadingRepo
	recs      repos.RecommendationRepo
	opts      repos.OptimizationRepo
	gen       *recommend.Generator
	pub       realtime.Publisher
	metrics   *observability.Metrics
	now       func() time.Time

	manual atomic.Bool
}

func NewService(log *logger.Logger, cfg Config, set repos.Set, gen *recommend.Generator, pub realtime.Publisher, metrics *observability.Metrics) *Service {
	def := DefaultConfig()
	if cfg.UtilitiesLimit <= 0 {
		cfg.UtilitiesLimit = def.UtilitiesLimit
	}
	if cfg.RecommendationLimit <= 0 {
		cfg.RecommendationLimit = def.RecommendationLimit
	}
	if cfg.Economics == (kpi.Economics{}) {
		cfg.Economics = def.Economics
	}
	if cfg.ModelConfidence <= 0 {
		cfg.ModelConfidence = def.ModelConfidence
	}
	if cfg.HealthThreshold <= 0 {
		cfg.HealthThreshold = def.HealthThreshold
	}
	if cfg.HealthCooldown <= 0 {
		cfg.HealthCooldown = def.HealthCooldown
	}
	if cfg.AlertMinPriority <= 0 {
		cfg.AlertMinPriority = def.AlertMinPriority
	}
	return &Service{
		log:       log.With("component", "MonitorService"),
		cfg:       cfg,
		collector: kpi.NewCollector(set.Readings, cfg.UtilitiesLimit),
		readings:  set.Readings,
		recs:      set.Recommendations,
		opts:      set.Optimizations,
		gen:       gen,
		pub:       pub,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// state is one consistent read of the store.
type state struct {
	src kpi.Sources
	k   kpi.KPIs
	ov  kpi.Overview
}

func (s *Service) load(ctx context.Context) (state, error) {
	src, err := s.collector.Collect(ctx)
	if err != nil {
		return state{}, fmt.Errorf("collect sources: %w", err)
	}
	k := kpi.Aggregate(src)
	return state{src: src, k: k, ov: kpi.ComputeOverview(k, src, s.cfg.Economics)}, nil
}

func (s *Service) snapshotFrom(ctx context.Context, st state) (Snapshot, error) {
	dbc := dbctx.Context{Ctx: ctx}
	open, err := s.recs.List(dbc, repos.RecommendationFilter{OpenOnly: true, NewestFirst: true, Limit: s.cfg.RecommendationLimit})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list recommendations: %w", err)
	}
	latest, err := s.opts.Latest(dbc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest optimization: %w", err)
	}
	return buildSnapshot(st.src, st.k, st.ov, open, latest), nil
}

// Snapshot reads the store and builds the payload used by both the initial
// frame and the periodic frames.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	st, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshotFrom(ctx, st)
}

func (s *Service) InitialMessage(ctx context.Context) (realtime.Message, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return realtime.Message{}, err
	}
	return realtime.NewMessage(realtime.TypeInitial, snap), nil
}

// KPIs returns the current KPIs and overview without generating anything.
func (s *Service) KPIs(ctx context.Context) (kpi.KPIs, kpi.Overview, kpi.Sources, error) {
	st, err := s.load(ctx)
	if err != nil {
		return kpi.KPIs{}, kpi.Overview{}, kpi.Sources{}, err
	}
	return st.k, st.ov, st.src, nil
}

type TickResult struct {
	Generated recommend.Result
	Snapshot  Snapshot
	Delivered int
}

// RunRealtime is the fast tick: rules only, then a plant_update frame.
func (s *Service) RunRealtime(ctx context.Context) error {
	_, err := s.tick(ctx, realtime.TypePlantUpdate, recommend.Options{})
	return err
}

// RunOptimization is the slow analysis tick: rules plus AI text, a persisted
// OptimizationSummary, then an optimization frame.
func (s *Service) RunOptimization(ctx context.Context) error {
	_, err := s.tick(ctx, realtime.TypeOptimization, recommend.Options{WithAI: true})
	return err
}

func (s *Service) tick(ctx context.Context, frame realtime.MessageType, opts recommend.Options) (TickResult, error) {
	ctx, span := observability.StartSpan(ctx, "monitor.tick", attribute.String("frame", string(frame)))
	defer span.End()

	st, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		return TickResult{}, err
	}
	s.recordKPIs(st.k)

	res, err := s.gen.Generate(ctx, st.k, opts)
	if err != nil {
		span.RecordError(err)
		return TickResult{}, err
	}
	s.publishAlerts(ctx, res.All())

	if frame == realtime.TypeOptimization {
		if _, err := s.persistOptimization(ctx, st, res); err != nil {
			span.RecordError(err)
			return TickResult{Generated: res}, err
		}
	}

	snap, err := s.snapshotFrom(ctx, st)
	if err != nil {
		return TickResult{Generated: res}, err
	}
	delivered, err := s.pub.Publish(ctx, realtime.NewMessage(frame, snap))
	if err != nil {
		return TickResult{Generated: res, Snapshot: snap}, fmt.Errorf("broadcast %s: %w", frame, err)
	}
	s.log.Debug("Tick complete",
		"frame", frame,
		"rule_recommendations", len(res.Rule),
		"suppressed", len(res.Suppressed),
		"ai", res.AI != nil,
		"delivered", delivered,
	)
	return TickResult{Generated: res, Snapshot: snap, Delivered: delivered}, nil
}

func (s *Service) persistOptimization(ctx context.Context, st state, res recommend.Result) (*plant.OptimizationSummary, error) {
	report := OptimizationReport{
		KPIs:            st.k,
		Overview:        st.ov,
		Recommendations: res.All(),
		Suppressed:      res.Suppressed,
		FuelMix:         fuelMixFor(st.src, DefaultTargetTSR),
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	row := &plant.OptimizationSummary{
		ModelConfidence: s.cfg.ModelConfidence,
		Report:          raw,
		CreatedAt:       s.now(),
	}
	if sv := st.ov.EnergySavings; sv != nil {
		row.EnergySavedKWh = ptr(sv.KWhPerHour)
		row.CostSavedUSD = ptr(sv.CostPerHour)
		row.CO2ReducedKg = ptr(sv.CO2KgPerHr)
	}
	if v, ok := st.ov.PlantEfficiencyScore.Float(); ok {
		row.PlantEfficiencyScore = ptr(v)
	}
	saved, err := s.opts.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return nil, fmt.Errorf("persist optimization summary: %w", err)
	}
	return saved, nil
}

// OptimizationReport is stored as the jsonb report of each summary.
type OptimizationReport struct {
	KPIs            kpi.KPIs                `json:"kpis"`
	Overview        kpi.Overview            `json:"overview"`
	Recommendations []*plant.Recommendation `json:"recommendations"`
	Suppressed      []string                `json:"suppressed"`
	FuelMix         *FuelMixAnalysis        `json:"fuel_mix"`
}

func (s *Service) publishAlerts(ctx context.Context, recs []*plant.Recommendation) {
	for _, r := range recs {
		if r.Priority < s.cfg.AlertMinPriority {
			continue
		}
		msg := realtime.NewMessage(realtime.TypeAlert, r)
		msg.Priority = r.Priority
		if _, err := s.pub.Publish(ctx, msg); err != nil {
			s.log.Warn("Alert broadcast failed", "recommendation_id", r.ID, "error", err)
		}
	}
}

func (s *Service) recordKPIs(k kpi.KPIs) {
	for _, name := range kpi.Names() {
		m, _ := k.Lookup(name)
		if v, ok := m.Float(); ok {
			s.metrics.SetKPI(name, v)
		} else {
			s.metrics.ClearKPI(name)
		}
	}
}

// AreaAliases maps the short names accepted by the manual trigger.
var AreaAliases = map[string]string{
	"feed": plant.AreaRawMaterial,
	"kiln": plant.AreaClinkering,
	"fuel": plant.AreaFuel,
}

// NormalizeArea resolves aliases and reports whether area is known.
func NormalizeArea(area string) (string, bool) {
	if a, ok := AreaAliases[area]; ok {
		return a, true
	}
	return area, recommend.ValidArea(area)
}

type AreaResult struct {
	ProcessArea string           `json:"process_area"`
	Generated   recommend.Result `json:"generated"`
	KPIs        kpi.KPIs         `json:"kpis"`
	Analysis    any              `json:"analysis,omitempty"`
	FuelMix     *FuelMixAnalysis `json:"fuel_mix,omitempty"`
}

// RunOptimizationForArea is the manual trigger. Only one manual run is in
// flight at a time; a concurrent call gets perr.ErrBusy.
func (s *Service) RunOptimizationForArea(ctx context.Context, area string) (AreaResult, error) {
	area, ok := NormalizeArea(area)
	if !ok {
		return AreaResult{}, fmt.Errorf("%w: unknown process area %q", perr.ErrInvalidArgument, area)
	}
	if !s.manual.CompareAndSwap(false, true) {
		return AreaResult{}, perr.ErrBusy
	}
	defer s.manual.Store(false)

	st, err := s.load(ctx)
	if err != nil {
		return AreaResult{}, err
	}
	scope := area
	if area == plant.AreaPlant {
		scope = ""
	}
	res, err := s.gen.Generate(ctx, st.k, recommend.Options{WithAI: true, ProcessArea: scope})
	if err != nil {
		return AreaResult{}, err
	}
	s.publishAlerts(ctx, res.All())

	out := AreaResult{ProcessArea: area, Generated: res, KPIs: st.k}
	switch area {
	case plant.AreaGrinding:
		out.Analysis = AnalyzeGrinding(st.src.Grinding, st.k, s.cfg.Economics)
	case plant.AreaRawMaterial:
		out.Analysis = AnalyzeChemistry(st.k)
	case plant.AreaFuel, plant.AreaClinkering:
		out.FuelMix = fuelMixFor(st.src, DefaultTargetTSR)
	}
	return out, nil
}

func ptr(v float64) *float64 { return &v }
