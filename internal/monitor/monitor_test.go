package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/cementplant-backend/internal/data/repos"
	"github.com/yungbote/cementplant-backend/internal/data/repos/testutil"
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
	perr "github.com/yungbote/cementplant-backend/internal/pkg/errors"
	"github.com/yungbote/cementplant-backend/internal/realtime"
	"github.com/yungbote/cementplant-backend/internal/recommend"
)

type recorder struct {
	mu   sync.Mutex
	msgs []realtime.Message
}

func (r *recorder) Publish(_ context.Context, msg realtime.Message) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return 1, nil
}

func (r *recorder) ofType(t realtime.MessageType) []realtime.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []realtime.Message
	for _, m := range r.msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type failingText struct{}

func (failingText) GenerateText(context.Context, string) (string, error) {
	return "", errors.New("upstream 503")
}

type env struct {
	db  *gorm.DB
	set repos.Set
	svc *Service
	pub *recorder
}

func newEnv(t *testing.T, text recommend.TextGenerator) env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	gen := recommend.NewGenerator(log, recommend.Config{Cooldown: 15 * time.Minute}, set.Recommendations, text, nil)
	pub := &recorder{}
	return env{db: db, set: set, svc: NewService(log, Config{}, set, gen, pub, nil), pub: pub}
}

func (e env) seed(t *testing.T, rows ...any) {
	t.Helper()
	for _, r := range rows {
		if err := e.db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
}

func (e env) openRecs(t *testing.T) []*plant.Recommendation {
	t.Helper()
	recs, err := e.set.Recommendations.List(dbctx.Context{Ctx: context.Background()}, repos.RecommendationFilter{OpenOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return recs
}

func highSECGrinding() *plant.GrindingOperation {
	return &plant.GrindingOperation{
		MillType:           "Ball Mill",
		PowerConsumptionKW: testutil.F(4800),
		TotalFeedRateTPH:   testutil.F(100),
		CreatedAt:          time.Now().UTC(),
	}
}

func dataKeys(t *testing.T, msg realtime.Message) []string {
	t.Helper()
	raw, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := make([]string, 0, len(env.Data))
	for k := range env.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestInitialAndPeriodicFramesShareShape(t *testing.T) {
	e := newEnv(t, nil)
	e.seed(t, highSECGrinding())
	ctx := context.Background()

	initial, err := e.svc.InitialMessage(ctx)
	if err != nil {
		t.Fatalf("InitialMessage: %v", err)
	}
	if err := e.svc.RunRealtime(ctx); err != nil {
		t.Fatalf("RunRealtime: %v", err)
	}
	updates := e.pub.ofType(realtime.TypePlantUpdate)
	if len(updates) != 1 {
		t.Fatalf("expected one plant_update, got %d", len(updates))
	}
	a, b := dataKeys(t, initial), dataKeys(t, updates[0])
	if len(a) != len(b) {
		t.Fatalf("key sets differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("key sets differ: %v vs %v", a, b)
		}
	}
}

func TestHighSECRaisesOneRecommendation(t *testing.T) {
	e := newEnv(t, nil)
	e.seed(t, highSECGrinding())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := e.svc.RunRealtime(ctx); err != nil {
			t.Fatalf("RunRealtime #%d: %v", i, err)
		}
	}
	recs := e.openRecs(t)
	if len(recs) != 1 {
		t.Fatalf("expected exactly one open recommendation, got %d", len(recs))
	}
	r := recs[0]
	if r.ProcessArea != plant.AreaGrinding || r.Priority != 8 || r.Source != plant.SourceRule {
		t.Fatalf("unexpected recommendation %+v", r)
	}
	if alerts := e.pub.ofType(realtime.TypeAlert); len(alerts) != 1 || alerts[0].Priority != 8 {
		t.Fatalf("expected one priority 8 alert, got %d", len(alerts))
	}
}

func TestOptimizationSurvivesAIFailure(t *testing.T) {
	e := newEnv(t, failingText{})
	e.seed(t, highSECGrinding())
	ctx := context.Background()

	if err := e.svc.RunOptimization(ctx); err != nil {
		t.Fatalf("RunOptimization: %v", err)
	}
	recs := e.openRecs(t)
	if len(recs) != 1 || recs[0].Source != plant.SourceRule {
		t.Fatalf("rule output should persist without AI, got %d rows", len(recs))
	}
	latest, err := e.set.Optimizations.Latest(dbctx.Context{Ctx: ctx})
	if err != nil || latest == nil {
		t.Fatalf("expected a summary, got %v err=%v", latest, err)
	}
	if latest.EnergySavedKWh == nil || *latest.EnergySavedKWh <= 0 {
		t.Fatalf("expected positive energy savings, got %v", latest.EnergySavedKWh)
	}
	var report OptimizationReport
	if err := json.Unmarshal(latest.Report, &report); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Recommendations) != 1 {
		t.Fatalf("report should carry the rule recommendation, got %d", len(report.Recommendations))
	}
	if frames := e.pub.ofType(realtime.TypeOptimization); len(frames) != 1 {
		t.Fatalf("expected one optimization frame, got %d", len(frames))
	}
}

func TestEmptyStoreSnapshot(t *testing.T) {
	e := newEnv(t, nil)
	msg, err := e.svc.InitialMessage(context.Background())
	if err != nil {
		t.Fatalf("InitialMessage: %v", err)
	}
	raw, _ := msg.Encode()
	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"raw_material", "grinding", "kiln", "quality", "alternative_fuels", "utilities", "recommendations"} {
		if string(env.Data[key]) != "[]" {
			t.Fatalf("%s = %s, want []", key, env.Data[key])
		}
	}
	if v, ok := env.Data["latest_optimization"]; !ok || string(v) != "null" {
		t.Fatalf("latest_optimization = %s (present=%v)", v, ok)
	}
}

func TestRunOptimizationForArea(t *testing.T) {
	e := newEnv(t, nil)
	e.seed(t, highSECGrinding())
	ctx := context.Background()

	if _, err := e.svc.RunOptimizationForArea(ctx, "warehouse"); !errors.Is(err, perr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	res, err := e.svc.RunOptimizationForArea(ctx, "kiln")
	if err != nil {
		t.Fatalf("kiln alias: %v", err)
	}
	if res.ProcessArea != plant.AreaClinkering || len(res.Generated.Rule) != 0 {
		t.Fatalf("unexpected kiln result %+v", res)
	}
	if res.FuelMix == nil || res.FuelMix.Available {
		t.Fatalf("fuel mix should be reported unavailable without kiln rows")
	}

	res, err = e.svc.RunOptimizationForArea(ctx, plant.AreaGrinding)
	if err != nil {
		t.Fatalf("grinding: %v", err)
	}
	if len(res.Generated.Rule) != 1 {
		t.Fatalf("expected the SEC rule, got %d", len(res.Generated.Rule))
	}
	g, ok := res.Analysis.(GrindingAnalysis)
	if !ok || g.Savings == nil {
		t.Fatalf("expected grinding analysis with savings, got %#v", res.Analysis)
	}

	e.svc.manual.Store(true)
	if _, err := e.svc.RunOptimizationForArea(ctx, plant.AreaGrinding); !errors.Is(err, perr.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestEquipmentHealthRaisesMaintenanceOnce(t *testing.T) {
	e := newEnv(t, nil)
	days := 200
	fresh := 10
	now := time.Now().UTC()
	e.seed(t,
		&plant.UtilitiesMonitoring{EquipmentName: "ID Fan", PowerKW: testutil.F(200), BaselinePowerKW: testutil.F(100), DaysSinceMaintenance: &days, CreatedAt: now},
		&plant.UtilitiesMonitoring{EquipmentName: "Cooler Fan", PowerKW: testutil.F(101), BaselinePowerKW: testutil.F(100), DaysSinceMaintenance: &fresh, CreatedAt: now},
		&plant.UtilitiesMonitoring{EquipmentName: "Compressor", CreatedAt: now},
	)
	ctx := context.Background()

	statuses, err := e.svc.EquipmentHealth(ctx)
	if err != nil {
		t.Fatalf("EquipmentHealth: %v", err)
	}
	if len(statuses) != 3 || statuses[0].EquipmentName != "Compressor" {
		t.Fatalf("unexpected statuses %+v", statuses)
	}
	if statuses[0].HealthScore.OK() {
		t.Fatalf("missing power should be unavailable")
	}

	for i := 0; i < 2; i++ {
		if err := e.svc.RunEquipmentHealth(ctx); err != nil {
			t.Fatalf("RunEquipmentHealth: %v", err)
		}
	}
	recs := e.openRecs(t)
	if len(recs) != 1 {
		t.Fatalf("expected one maintenance recommendation, got %d", len(recs))
	}
	if recs[0].RuleName != "equipment_health:ID Fan" || recs[0].Priority != 8 || recs[0].RecommendationType != "maintenance" {
		t.Fatalf("unexpected recommendation %+v", recs[0])
	}
}

func TestPlantReportDoesNotPersist(t *testing.T) {
	e := newEnv(t, nil)
	e.seed(t, highSECGrinding())

	rep, err := e.svc.PlantReport(context.Background())
	if err != nil {
		t.Fatalf("PlantReport: %v", err)
	}
	if len(rep.Fired) != 1 {
		t.Fatalf("expected one fired rule, got %v", rep.Fired)
	}
	if len(e.openRecs(t)) != 0 {
		t.Fatalf("plant report must not persist recommendations")
	}
}

func TestSnapshotListsNewestRecommendations(t *testing.T) {
	e := newEnv(t, nil)
	old := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		e.seed(t, &plant.Recommendation{
			ProcessArea:        plant.AreaGrinding,
			RecommendationType: "energy",
			Priority:           8,
			Description:        "older critical",
			Source:             plant.SourceRule,
			CreatedAt:          old.Add(time.Duration(i) * time.Second),
		})
	}
	e.seed(t, &plant.Recommendation{
		ProcessArea:        plant.AreaQuality,
		RecommendationType: "quality",
		Priority:           4,
		Description:        "newest info",
		Source:             plant.SourceRule,
		CreatedAt:          time.Now().UTC(),
	})

	snap, err := e.svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Recommendations) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(snap.Recommendations))
	}
	if snap.Recommendations[0].Description != "newest info" {
		t.Fatalf("newest recommendation missing, first = %q", snap.Recommendations[0].Description)
	}
}

func TestEquipmentHealthMissingMaintenanceDaysIsUnavailable(t *testing.T) {
	e := newEnv(t, nil)
	e.seed(t, &plant.UtilitiesMonitoring{EquipmentName: "Raw Mill Fan", PowerKW: testutil.F(100), BaselinePowerKW: testutil.F(100), CreatedAt: time.Now().UTC()})

	statuses, err := e.svc.EquipmentHealth(context.Background())
	if err != nil {
		t.Fatalf("EquipmentHealth: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected one status, got %d", len(statuses))
	}
	if statuses[0].HealthScore.OK() || statuses[0].NeedsMaintenance {
		t.Fatalf("missing maintenance days should be unavailable, got %+v", statuses[0].HealthScore)
	}
}
