package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
	"github.com/yungbote/cementplant-backend/internal/observability"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	"github.com/yungbote/cementplant-backend/internal/platform/logger"
)

type Config struct {
	Rules []Rule
	// Cooldown suppresses a rule while an unacknowledged row from it is younger
	// than this. Zero disables suppression.
	Cooldown   time.Duration
	AITimeout  time.Duration
	CostPerKWh float64
}

type Generator struct {
	log     *logger.Logger
	cfg     Config
	store   repos.RecommendationRepo
	text    TextGenerator
	metrics *observability.Metrics
	now     func() time.Time
}

// NewGenerator wires a generator. text may be nil, in which case only rules run.
func NewGenerator(log *logger.Logger, cfg Config, store repos.RecommendationRepo, text TextGenerator, metrics *observability.Metrics) *Generator {
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 20 * time.Second
	}
	return &Generator{
		log:     log.With("component", "RecommendationGenerator"),
		cfg:     cfg,
		store:   store,
		text:    text,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type Options struct {
	// WithAI asks the text generator for one additional recommendation.
	WithAI bool
	// ProcessArea restricts rule evaluation to one area when set.
	ProcessArea string
}

type Result struct {
	Rule       []*plant.Recommendation `json:"rule"`
	Suppressed []string                `json:"suppressed"`
	AI         *plant.Recommendation   `json:"ai"`
}

// All returns the persisted recommendations, rule output first.
func (r Result) All() []*plant.Recommendation {
	out := make([]*plant.Recommendation, 0, len(r.Rule)+1)
	out = append(out, r.Rule...)
	if r.AI != nil {
		out = append(out, r.AI)
	}
	return out
}

func (g *Generator) Rules() []Rule { return append([]Rule(nil), g.cfg.Rules...) }

// Generate persists rule output and then, optionally, one AI recommendation.
// The rule path completes before the text generator is called, and any failure
// on the AI side is logged and dropped.
func (g *Generator) Generate(ctx context.Context, k kpi.KPIs, opts Options) (Result, error) {
	res := Result{Rule: []*plant.Recommendation{}, Suppressed: []string{}}

	candidates := Evaluate(g.rulesFor(opts.ProcessArea), k)
	fresh, suppressed, err := g.applyCooldown(ctx, candidates)
	if err != nil {
		return res, err
	}
	res.Suppressed = suppressed

	now := g.now()
	for _, rec := range fresh {
		rec.CreatedAt = now
	}
	persisted, err := g.store.Create(dbctx.Context{Ctx: ctx}, fresh)
	if err != nil {
		return res, fmt.Errorf("persist rule recommendations: %w", err)
	}
	res.Rule = persisted
	for _, rec := range persisted {
		g.metrics.RecommendationCreated(rec.Source, Band(rec.Priority))
	}

	if !opts.WithAI || g.text == nil {
		return res, nil
	}
	aiRec, err := g.generateAI(ctx, k, candidates, opts.ProcessArea)
	if err != nil {
		g.log.Warn("AI recommendation unavailable", "error", err)
		return res, nil
	}
	saved, err := g.store.Create(dbctx.Context{Ctx: ctx}, []*plant.Recommendation{aiRec})
	if err != nil {
		g.log.Warn("Persisting AI recommendation failed", "error", err)
		return res, nil
	}
	res.AI = saved[0]
	g.metrics.RecommendationCreated(res.AI.Source, Band(res.AI.Priority))
	return res, nil
}

func (g *Generator) rulesFor(area string) []Rule {
	if area == "" {
		return g.cfg.Rules
	}
	out := make([]Rule, 0, len(g.cfg.Rules))
	for _, r := range g.cfg.Rules {
		if r.ProcessArea == area {
			out = append(out, r)
		}
	}
	return out
}

func (g *Generator) applyCooldown(ctx context.Context, candidates []*plant.Recommendation) ([]*plant.Recommendation, []string, error) {
	if g.cfg.Cooldown <= 0 || len(candidates) == 0 {
		return candidates, []string{}, nil
	}
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.RuleName)
	}
	open, err := g.store.LatestOpenByRule(dbctx.Context{Ctx: ctx}, names, g.now().Add(-g.cfg.Cooldown))
	if err != nil {
		return nil, nil, fmt.Errorf("cooldown lookup: %w", err)
	}
	fresh := make([]*plant.Recommendation, 0, len(candidates))
	suppressed := []string{}
	for _, c := range candidates {
		if _, dup := open[c.RuleName]; dup {
			suppressed = append(suppressed, c.RuleName)
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, suppressed, nil
}

func (g *Generator) generateAI(ctx context.Context, k kpi.KPIs, fired []*plant.Recommendation, area string) (*plant.Recommendation, error) {
	actx, cancel := context.WithTimeout(ctx, g.cfg.AITimeout)
	defer cancel()

	text, err := g.text.GenerateText(actx, BuildPrompt(k, fired, area))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded) {
			g.metrics.AIRequest("timeout")
		} else {
			g.metrics.AIRequest("error")
		}
		return nil, err
	}
	parsed, err := ParseAIText(text)
	if err != nil {
		g.metrics.AIRequest("unparseable")
		return nil, err
	}
	g.metrics.AIRequest("ok")

	rec := &plant.Recommendation{
		ProcessArea:         plant.AreaPlant,
		RecommendationType:  "ai_optimization",
		Priority:            5,
		Description:         parsed.Description,
		Source:              plant.SourceAI,
		EstimatedSavingsKWh: parsed.SavingsKWh,
		CreatedAt:           g.now(),
	}
	if parsed.Priority > 0 {
		rec.Priority = parsed.Priority
	}
	switch {
	case area != "":
		rec.ProcessArea = area
	case ValidArea(parsed.ProcessArea):
		rec.ProcessArea = parsed.ProcessArea
	}
	if parsed.SavingsKWh != nil && g.cfg.CostPerKWh > 0 {
		cost := *parsed.SavingsKWh * g.cfg.CostPerKWh
		rec.EstimatedSavingsCost = &cost
	}
	return rec, nil
}

// ValidArea reports whether a is a known process area.
func ValidArea(a string) bool {
	switch a {
	case plant.AreaRawMaterial, plant.AreaGrinding, plant.AreaClinkering, plant.AreaQuality,
		plant.AreaFuel, plant.AreaUtilities, plant.AreaPlant:
		return true
	}
	return false
}
