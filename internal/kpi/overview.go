package kpi

import (
	"math"

	"github.com/yungbote/cementplant-backend/internal/calc"
)

// Economics prices energy savings.
type Economics struct {
	TargetSEC   float64 `yaml:"target_sec"`
	CostPerKWh  float64 `yaml:"cost_per_kwh"`
	CO2KgPerKWh float64 `yaml:"co2_kg_per_kwh"`
}

func DefaultEconomics() Economics {
	return Economics{TargetSEC: 25, CostPerKWh: 0.15, CO2KgPerKWh: 0.5}
}

type Band string

const (
	BandOptimal    Band = "optimal"
	BandAcceptable Band = "acceptable"
	BandWarning    Band = "warning"
	BandCritical   Band = "critical"
	BandUnknown    Band = "unknown"
)

// Overview is the plant-level summary derived from KPIs.
type Overview struct {
	PlantEfficiencyScore Metric              `json:"plant_efficiency_score"`
	EnergySavings        *calc.EnergySavings `json:"energy_savings"`
	LSFBand              Band                `json:"lsf_band"`
	SECBand              Band                `json:"sec_band"`
	Sources              map[string]bool     `json:"sources"`
}

func ComputeOverview(k KPIs, src Sources, econ Economics) Overview {
	ov := Overview{
		LSFBand: LSFBand(k.LSFPct),
		SECBand: SECBand(k.SpecificEnergy),
		Sources: map[string]bool{
			"raw_material":     src.RawMaterial != nil,
			"grinding":         src.Grinding != nil,
			"kiln":             src.Kiln != nil,
			"quality":          src.Quality != nil,
			"alternative_fuel": src.AlternativeFuel != nil,
			"utilities":        len(src.Utilities) > 0,
		},
	}
	ov.PlantEfficiencyScore = PlantEfficiencyScore(k)
	if sec, ok := k.SpecificEnergy.Float(); ok && src.Grinding != nil && src.Grinding.TotalFeedRateTPH != nil {
		if s, err := calc.ComputeEnergySavings(sec, econ.TargetSEC, *src.Grinding.TotalFeedRateTPH, econ.CostPerKWh, econ.CO2KgPerKWh); err == nil {
			ov.EnergySavings = &s
		}
	}
	return ov
}

// LSFBand classifies LSF percent: 92..98 optimal, 90..100 warning, else critical.
func LSFBand(m Metric) Band {
	v, ok := m.Float()
	switch {
	case !ok:
		return BandUnknown
	case v >= calc.LSFLowPct && v <= calc.LSFHighPct:
		return BandOptimal
	case v >= 90 && v <= 100:
		return BandWarning
	default:
		return BandCritical
	}
}

// SECBand classifies grinding energy: up to 25 kWh/t optimal, up to 30 acceptable.
func SECBand(m Metric) Band {
	v, ok := m.Float()
	switch {
	case !ok:
		return BandUnknown
	case v <= 25:
		return BandOptimal
	case v <= 30:
		return BandAcceptable
	default:
		return BandCritical
	}
}

// PlantEfficiencyScore starts from 70 and adjusts for each available KPI, clamped
// to 55..100. Missing KPIs contribute nothing; with none available the score
// itself is unavailable.
func PlantEfficiencyScore(k KPIs) Metric {
	score := 70.0
	used := 0

	if sec, ok := k.SpecificEnergy.Float(); ok {
		used++
		switch {
		case sec <= 25:
			score += 10
		case sec <= 30:
			score += 5
		}
	}
	if q, ok := k.QualityScore.Float(); ok {
		used++
		switch {
		case q >= 95:
			score += 8
		case q >= 90:
			score += 5
		}
	}
	if tsr, ok := k.ThermalSubstitution.Float(); ok {
		used++
		switch {
		case tsr >= 30:
			score += 5
		case tsr >= 20:
			score += 2
		}
	}
	switch LSFBand(k.LSFPct) {
	case BandOptimal:
		used++
		score += 2
	case BandCritical:
		used++
		score -= 4
	case BandWarning:
		used++
	}

	if used == 0 {
		return Unavailable("no efficiency inputs")
	}
	return Available(math.Min(100, math.Max(55, score)))
}
