package kpi

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/pkg/dbctx"
)

func f(v float64) *float64 { return &v }

func fullSources() Sources {
	return Sources{
		RawMaterial: &plant.RawMaterialFeed{CaOPct: f(64), SiO2Pct: f(21), Al2O3Pct: f(5), Fe2O3Pct: f(3)},
		Grinding:    &plant.GrindingOperation{MillType: "VRM", PowerConsumptionKW: f(2800), TotalFeedRateTPH: f(100), DifferentialPressureMbar: f(70), FinenessBlaineCm2g: f(3800)},
		Kiln:        &plant.KilnOperation{BurningZoneTempC: f(1450), CoalRateTPH: f(20), AltFuelRateTPH: f(5), AltFuelType: "biomass", SpecificHeatMJkg: f(3.4)},
		Quality:     &plant.QualityControl{AIQualityScore: f(93), CompressiveStrength7dMPa: f(35), SoundnessMM: f(2), FinenessBlaineCm2g: f(3700)},
		Utilities:   []*plant.UtilitiesMonitoring{{EquipmentName: "ID Fan", PowerKW: f(900), EfficiencyPct: f(85)}, {EquipmentName: "Cooler", PowerKW: f(300), EfficiencyPct: f(75)}},
	}
}

func TestAggregateReferenceChemistry(t *testing.T) {
	k := Aggregate(Sources{RawMaterial: &plant.RawMaterialFeed{CaOPct: f(64), SiO2Pct: f(21), Al2O3Pct: f(5), Fe2O3Pct: f(3)}})
	v, ok := k.LSFRatio.Float()
	if !ok || math.Abs(v-0.959) > 0.0005 {
		t.Fatalf("LSF ratio=%v ok=%v", v, ok)
	}
	if k.SpecificEnergy.Status != StatusUnavailable {
		t.Fatalf("missing grinding row should leave SEC unavailable, got %+v", k.SpecificEnergy)
	}
}

func TestAggregateMissingTableOnlyAffectsItsMetrics(t *testing.T) {
	full := Aggregate(fullSources())

	src := fullSources()
	src.Kiln = nil
	partial := Aggregate(src)

	for _, m := range []Metric{partial.BurningZoneTemp, partial.SpecificHeat, partial.ThermalSubstitution} {
		if m.Status != StatusUnavailable || m.Value != nil {
			t.Fatalf("kiln metric should be unavailable: %+v", m)
		}
	}
	pairs := [][2]Metric{
		{full.LSFPct, partial.LSFPct},
		{full.SpecificEnergy, partial.SpecificEnergy},
		{full.QualityScore, partial.QualityScore},
		{full.Strength28d, partial.Strength28d},
		{full.UtilitiesPower, partial.UtilitiesPower},
	}
	for i, p := range pairs {
		a, aok := p[0].Float()
		b, bok := p[1].Float()
		if !aok || !bok || a != b {
			t.Fatalf("pair %d changed when kiln row was removed: %+v vs %+v", i, p[0], p[1])
		}
	}
}

func TestAggregateZeroIsNotMissing(t *testing.T) {
	src := Sources{Kiln: &plant.KilnOperation{CoalRateTPH: f(20), AltFuelRateTPH: f(0)}}
	k := Aggregate(src)
	v, ok := k.ThermalSubstitution.Float()
	if !ok || v != 0 {
		t.Fatalf("zero alt fuel should give TSR 0, got %+v", k.ThermalSubstitution)
	}

	src.Kiln.AltFuelRateTPH = nil
	k = Aggregate(src)
	if k.ThermalSubstitution.Status != StatusUnavailable {
		t.Fatalf("missing alt fuel rate should be unavailable, got %+v", k.ThermalSubstitution)
	}
}

func TestAggregateInvalidArithmetic(t *testing.T) {
	k := Aggregate(Sources{
		Grinding: &plant.GrindingOperation{PowerConsumptionKW: f(3000), TotalFeedRateTPH: f(0)},
		Kiln:     &plant.KilnOperation{CoalRateTPH: f(0), AltFuelRateTPH: f(0)},
	})
	if k.SpecificEnergy.Status != StatusInvalid {
		t.Fatalf("zero feed should be invalid, got %+v", k.SpecificEnergy)
	}
	if k.ThermalSubstitution.Status != StatusInvalid {
		t.Fatalf("zero heat should be invalid, got %+v", k.ThermalSubstitution)
	}
}

func TestAggregateVRMOnlyDifferentialPressure(t *testing.T) {
	src := fullSources()
	src.Grinding.MillType = "Ball Mill"
	if k := Aggregate(src); k.VRMDifferential.OK() {
		t.Fatalf("ball mill should not report VRM differential pressure")
	}
}

func TestAggregateUtilitiesCountsEachEquipmentOnce(t *testing.T) {
	k := Aggregate(Sources{Utilities: []*plant.UtilitiesMonitoring{
		{EquipmentName: "ID Fan", PowerKW: f(950), EfficiencyPct: f(80)},
		{EquipmentName: "Cooler", PowerKW: f(300), EfficiencyPct: f(70)},
		{EquipmentName: "ID Fan", PowerKW: f(900), EfficiencyPct: f(90)},
	}})
	if v, ok := k.UtilitiesPower.Float(); !ok || v != 1250 {
		t.Fatalf("utilities power = %v (ok=%v), want 1250", v, ok)
	}
	if v, ok := k.UtilitiesEfficiency.Float(); !ok || v != 75 {
		t.Fatalf("utilities efficiency = %v (ok=%v), want 75", v, ok)
	}
}

func TestLookupCoversAllNames(t *testing.T) {
	k := Aggregate(fullSources())
	names := []string{
		MetricLSFRatio, MetricLSFPct, MetricSilicaModulus, MetricAluminaModulus, MetricC3S,
		MetricSpecificEnergy, MetricVRMDifferential, MetricMillFineness, MetricBurningZoneTemp,
		MetricSpecificHeat, MetricThermalSubstitution, MetricQualityScore, MetricStrength28d,
		MetricSoundness, MetricCementFineness, MetricUtilitiesPower, MetricUtilitiesEfficiency,
	}
	for _, n := range names {
		m, ok := k.Lookup(n)
		if !ok || !m.OK() {
			t.Fatalf("metric %s missing from full sources: %+v", n, m)
		}
	}
	if _, ok := k.Lookup("nope"); ok {
		t.Fatalf("unknown metric should not resolve")
	}
}

func TestPlantEfficiencyScore(t *testing.T) {
	if m := PlantEfficiencyScore(KPIs{}); m.OK() {
		t.Fatalf("empty KPIs should give no score")
	}
	k := Aggregate(fullSources())
	// SEC 28 (+5), quality 93 (+5), TSR ~16.5 (+0), LSF optimal (+2)
	v, ok := PlantEfficiencyScore(k).Float()
	if !ok || v != 82 {
		t.Fatalf("score=%v ok=%v", v, ok)
	}
}

func TestComputeOverview(t *testing.T) {
	src := fullSources()
	ov := ComputeOverview(Aggregate(src), src, DefaultEconomics())
	if ov.EnergySavings == nil || ov.EnergySavings.KWhPerHour != 300 {
		t.Fatalf("unexpected savings: %+v", ov.EnergySavings)
	}
	if ov.SECBand != BandAcceptable || ov.LSFBand != BandOptimal {
		t.Fatalf("unexpected bands: %s %s", ov.SECBand, ov.LSFBand)
	}
	if !ov.Sources["kiln"] || ov.Sources["alternative_fuel"] {
		t.Fatalf("unexpected sources map: %+v", ov.Sources)
	}
}

type fakeReadings struct {
	grinding []*plant.GrindingOperation
	err      error
}

func (f *fakeReadings) RecentRawMaterial(dbctx.Context, int) ([]*plant.RawMaterialFeed, error) {
	return []*plant.RawMaterialFeed{}, nil
}
func (f *fakeReadings) RecentGrinding(dbctx.Context, int) ([]*plant.GrindingOperation, error) {
	return f.grinding, nil
}
func (f *fakeReadings) RecentKiln(dbctx.Context, int) ([]*plant.KilnOperation, error) {
	return nil, f.err
}
func (f *fakeReadings) RecentUtilities(dbctx.Context, int) ([]*plant.UtilitiesMonitoring, error) {
	return []*plant.UtilitiesMonitoring{}, nil
}
func (f *fakeReadings) RecentQuality(dbctx.Context, int) ([]*plant.QualityControl, error) {
	return []*plant.QualityControl{}, nil
}
func (f *fakeReadings) RecentAlternativeFuels(dbctx.Context, int) ([]*plant.AlternativeFuel, error) {
	return []*plant.AlternativeFuel{}, nil
}

func TestCollector(t *testing.T) {
	repo := &fakeReadings{grinding: []*plant.GrindingOperation{{PowerConsumptionKW: f(4800), TotalFeedRateTPH: f(100)}}}
	src, err := NewCollector(repo, 5).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if src.Grinding == nil || src.RawMaterial != nil || src.Kiln != nil {
		t.Fatalf("unexpected sources: %+v", src)
	}

	repo.err = errors.New("connection refused")
	if _, err := NewCollector(repo, 5).Collect(context.Background()); err == nil {
		t.Fatalf("store error should fail the collection")
	}
}
