package monitor

import (
	"context"
	"errors"

	"github.com/yungbote/cementplant-backend/internal/calc"
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
	"github.com/yungbote/cementplant-backend/internal/recommend"
)

const DefaultTargetTSR = 30.0

var errNoFuelRates = errors.New("latest kiln row has no coal and alternative fuel rates")

type ChemistryAnalysis struct {
	LSF            kpi.Metric `json:"lsf_pct"`
	LSFBand        kpi.Band   `json:"lsf_band"`
	SilicaModulus  kpi.Metric `json:"silica_modulus"`
	AluminaModulus kpi.Metric `json:"alumina_modulus"`
	C3S            kpi.Metric `json:"c3s_pct"`
	Adjustments    []string   `json:"adjustments"`
}

func AnalyzeChemistry(k kpi.KPIs) ChemistryAnalysis {
	out := ChemistryAnalysis{
		LSF:            k.LSFPct,
		LSFBand:        kpi.LSFBand(k.LSFPct),
		SilicaModulus:  k.SilicaModulus,
		AluminaModulus: k.AluminaModulus,
		C3S:            k.C3S,
		Adjustments:    []string{},
	}
	if v, ok := k.LSFPct.Float(); ok {
		switch {
		case v < calc.LSFLowPct:
			out.Adjustments = append(out.Adjustments, "increase limestone (CaO) in the raw mix")
		case v > calc.LSFHighPct:
			out.Adjustments = append(out.Adjustments, "reduce limestone (CaO) in the raw mix")
		}
	}
	if v, ok := k.SilicaModulus.Float(); ok {
		switch {
		case v < 2.2:
			out.Adjustments = append(out.Adjustments, "add a siliceous corrective such as sand")
		case v > 3.2:
			out.Adjustments = append(out.Adjustments, "add iron ore or bauxite to lower silica modulus")
		}
	}
	return out
}

type GrindingAnalysis struct {
	MillType       string              `json:"mill_type,omitempty"`
	SpecificEnergy kpi.Metric          `json:"specific_energy_kwh_t"`
	Status         kpi.Band            `json:"status"`
	TargetSEC      float64             `json:"target_sec_kwh_t"`
	Savings        *calc.EnergySavings `json:"potential_savings"`
	Differential   kpi.Metric          `json:"vrm_differential_pressure_mbar"`
	Fineness       kpi.Metric          `json:"fineness_blaine_cm2g"`
}

func AnalyzeGrinding(g *plant.GrindingOperation, k kpi.KPIs, econ kpi.Economics) GrindingAnalysis {
	out := GrindingAnalysis{
		SpecificEnergy: k.SpecificEnergy,
		Status:         kpi.SECBand(k.SpecificEnergy),
		TargetSEC:      econ.TargetSEC,
		Differential:   k.VRMDifferential,
		Fineness:       k.MillFineness,
	}
	if g == nil {
		return out
	}
	out.MillType = g.MillType
	if sec, ok := k.SpecificEnergy.Float(); ok && g.TotalFeedRateTPH != nil {
		if s, err := calc.ComputeEnergySavings(sec, econ.TargetSEC, *g.TotalFeedRateTPH, econ.CostPerKWh, econ.CO2KgPerKWh); err == nil {
			out.Savings = &s
		}
	}
	return out
}

// FuelMixAnalysis wraps calc.FuelMix with the reason it could not be computed.
type FuelMixAnalysis struct {
	Available bool          `json:"available"`
	Reason    string        `json:"reason,omitempty"`
	Mix       *calc.FuelMix `json:"mix,omitempty"`
}

func fuelMixFor(src kpi.Sources, targetTSR float64) *FuelMixAnalysis {
	mix, err := OptimizeFuel(src, targetTSR)
	if err != nil {
		return &FuelMixAnalysis{Reason: err.Error()}
	}
	return &FuelMixAnalysis{Available: true, Mix: &mix}
}

// OptimizeFuel rebalances the latest kiln fuel rates toward targetTSR.
func OptimizeFuel(src kpi.Sources, targetTSR float64) (calc.FuelMix, error) {
	kiln := src.Kiln
	if kiln == nil || kiln.CoalRateTPH == nil || kiln.AltFuelRateTPH == nil {
		return calc.FuelMix{}, errNoFuelRates
	}
	altType := kiln.AltFuelType
	if altType == "" && src.AlternativeFuel != nil {
		altType = src.AlternativeFuel.FuelType
	}
	return calc.OptimizeFuelMix(*kiln.CoalRateTPH, *kiln.AltFuelRateTPH, altType, targetTSR)
}

type PlantReport struct {
	KPIs      kpi.KPIs          `json:"kpis"`
	Overview  kpi.Overview      `json:"overview"`
	Chemistry ChemistryAnalysis `json:"chemistry"`
	Grinding  GrindingAnalysis  `json:"grinding"`
	FuelMix   *FuelMixAnalysis  `json:"fuel_mix"`
	Fired     []string          `json:"threshold_alerts"`
}

// PlantReport evaluates the current state without persisting anything.
func (s *Service) PlantReport(ctx context.Context) (PlantReport, error) {
	st, err := s.load(ctx)
	if err != nil {
		return PlantReport{}, err
	}
	fired := []string{}
	for _, r := range recommend.Evaluate(s.gen.Rules(), st.k) {
		fired = append(fired, r.RuleName)
	}
	return PlantReport{
		KPIs:      st.k,
		Overview:  st.ov,
		Chemistry: AnalyzeChemistry(st.k),
		Grinding:  AnalyzeGrinding(st.src.Grinding, st.k, s.cfg.Economics),
		FuelMix:   fuelMixFor(st.src, DefaultTargetTSR),
		Fired:     fired,
	}, nil
}

func (s *Service) Economics() kpi.Economics { return s.cfg.Economics }
