// Package kpi turns the latest plant rows into named process KPIs.
package kpi

import (
	"github.com/yungbote/cementplant-backend/internal/calc"
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
)

// Stable metric names used by rules and API consumers.
const (
	MetricLSFRatio            = "lsf_ratio"
	MetricLSFPct              = "lsf_pct"
	MetricSilicaModulus       = "silica_modulus"
	MetricAluminaModulus      = "alumina_modulus"
	MetricC3S                 = "c3s_pct"
	MetricSpecificEnergy      = "specific_energy_kwh_t"
	MetricVRMDifferential     = "vrm_differential_pressure_mbar"
	MetricMillFineness        = "mill_fineness_blaine_cm2g"
	MetricBurningZoneTemp     = "burning_zone_temp_c"
	MetricSpecificHeat        = "specific_heat_mjkg"
	MetricThermalSubstitution = "thermal_substitution_pct"
	MetricQualityScore        = "ai_quality_score"
	MetricStrength28d         = "strength_28d_mpa"
	MetricSoundness           = "soundness_mm"
	MetricCementFineness      = "cement_fineness_blaine_cm2g"
	MetricUtilitiesPower      = "utilities_power_kw"
	MetricUtilitiesEfficiency = "utilities_efficiency_pct"
)

// Sources is the latest row of each table. A nil pointer (or empty slice) means
// the table had no recent row.
type Sources struct {
	RawMaterial     *plant.RawMaterialFeed
	Grinding        *plant.GrindingOperation
	Kiln            *plant.KilnOperation
	Quality         *plant.QualityControl
	AlternativeFuel *plant.AlternativeFuel
	Utilities       []*plant.UtilitiesMonitoring
}

type KPIs struct {
	LSFRatio            Metric `json:"lsf_ratio"`
	LSFPct              Metric `json:"lsf_pct"`
	SilicaModulus       Metric `json:"silica_modulus"`
	AluminaModulus      Metric `json:"alumina_modulus"`
	C3S                 Metric `json:"c3s_pct"`
	SpecificEnergy      Metric `json:"specific_energy_kwh_t"`
	VRMDifferential     Metric `json:"vrm_differential_pressure_mbar"`
	MillFineness        Metric `json:"mill_fineness_blaine_cm2g"`
	BurningZoneTemp     Metric `json:"burning_zone_temp_c"`
	SpecificHeat        Metric `json:"specific_heat_mjkg"`
	ThermalSubstitution Metric `json:"thermal_substitution_pct"`
	QualityScore        Metric `json:"ai_quality_score"`
	Strength28d         Metric `json:"strength_28d_mpa"`
	Soundness           Metric `json:"soundness_mm"`
	CementFineness      Metric `json:"cement_fineness_blaine_cm2g"`
	UtilitiesPower      Metric `json:"utilities_power_kw"`
	UtilitiesEfficiency Metric `json:"utilities_efficiency_pct"`
}

// Names lists every metric name in declaration order.
func Names() []string {
	return []string{
		MetricLSFRatio, MetricLSFPct, MetricSilicaModulus, MetricAluminaModulus, MetricC3S,
		MetricSpecificEnergy, MetricVRMDifferential, MetricMillFineness,
		MetricBurningZoneTemp, MetricSpecificHeat, MetricThermalSubstitution,
		MetricQualityScore, MetricStrength28d, MetricSoundness, MetricCementFineness,
		MetricUtilitiesPower, MetricUtilitiesEfficiency,
	}
}

// Lookup returns a metric by its stable name.
func (k KPIs) Lookup(name string) (Metric, bool) {
	switch name {
	case MetricLSFRatio:
		return k.LSFRatio, true
	case MetricLSFPct:
		return k.LSFPct, true
	case MetricSilicaModulus:
		return k.SilicaModulus, true
	case MetricAluminaModulus:
		return k.AluminaModulus, true
	case MetricC3S:
		return k.C3S, true
	case MetricSpecificEnergy:
		return k.SpecificEnergy, true
	case MetricVRMDifferential:
		return k.VRMDifferential, true
	case MetricMillFineness:
		return k.MillFineness, true
	case MetricBurningZoneTemp:
		return k.BurningZoneTemp, true
	case MetricSpecificHeat:
		return k.SpecificHeat, true
	case MetricThermalSubstitution:
		return k.ThermalSubstitution, true
	case MetricQualityScore:
		return k.QualityScore, true
	case MetricStrength28d:
		return k.Strength28d, true
	case MetricSoundness:
		return k.Soundness, true
	case MetricCementFineness:
		return k.CementFineness, true
	case MetricUtilitiesPower:
		return k.UtilitiesPower, true
	case MetricUtilitiesEfficiency:
		return k.UtilitiesEfficiency, true
	}
	return Metric{}, false
}

// Aggregate is pure: the same sources always produce the same KPIs.
func Aggregate(src Sources) KPIs {
	var k KPIs
	aggregateChemistry(&k, src.RawMaterial)
	aggregateGrinding(&k, src.Grinding)
	aggregateKiln(&k, src.Kiln, src.AlternativeFuel)
	aggregateQuality(&k, src.Quality)
	aggregateUtilities(&k, src.Utilities)
	return k
}

func aggregateChemistry(k *KPIs, rm *plant.RawMaterialFeed) {
	if rm == nil {
		m := Unavailable("no raw_material_feed row")
		k.LSFRatio, k.LSFPct, k.SilicaModulus, k.AluminaModulus, k.C3S = m, m, m, m, m
		return
	}
	cao, sio2, al2o3, fe2o3 := rm.CaOPct, rm.SiO2Pct, rm.Al2O3Pct, rm.Fe2O3Pct

	if missing := firstMissing(field{cao, "cao_pct"}, field{sio2, "sio2_pct"}, field{al2o3, "al2o3_pct"}, field{fe2o3, "fe2o3_pct"}); missing != "" {
		m := Unavailable(missing + " missing")
		k.LSFRatio, k.LSFPct, k.C3S = m, m, m
	} else {
		k.LSFRatio = fromCalc(calc.LSF(*cao, *sio2, *al2o3, *fe2o3))
		k.LSFPct = fromCalc(calc.LSFPercent(*cao, *sio2, *al2o3, *fe2o3))
		k.C3S = fromCalc(calc.BogueC3S(*cao, *sio2, *al2o3, *fe2o3))
	}

	if missing := firstMissing(field{sio2, "sio2_pct"}, field{al2o3, "al2o3_pct"}, field{fe2o3, "fe2o3_pct"}); missing != "" {
		k.SilicaModulus = Unavailable(missing + " missing")
	} else {
		k.SilicaModulus = fromCalc(calc.SilicaModulus(*sio2, *al2o3, *fe2o3))
	}

	if missing := firstMissing(field{al2o3, "al2o3_pct"}, field{fe2o3, "fe2o3_pct"}); missing != "" {
		k.AluminaModulus = Unavailable(missing + " missing")
	} else {
		k.AluminaModulus = fromCalc(calc.AluminaModulus(*al2o3, *fe2o3))
	}
}

func aggregateGrinding(k *KPIs, g *plant.GrindingOperation) {
	if g == nil {
		m := Unavailable("no grinding_operations row")
		k.SpecificEnergy, k.VRMDifferential, k.MillFineness = m, m, m
		return
	}
	if missing := firstMissing(field{g.PowerConsumptionKW, "power_consumption_kw"}, field{g.TotalFeedRateTPH, "total_feed_rate_tph"}); missing != "" {
		k.SpecificEnergy = Unavailable(missing + " missing")
	} else {
		k.SpecificEnergy = fromCalc(calc.SpecificEnergy(*g.PowerConsumptionKW, *g.TotalFeedRateTPH))
	}
	switch {
	case !g.IsVRM():
		k.VRMDifferential = Unavailable("mill is not a VRM")
	default:
		k.VRMDifferential = reported(g.DifferentialPressureMbar, "differential_pressure_mbar")
	}
	k.MillFineness = reported(g.FinenessBlaineCm2g, "fineness_blaine_cm2g")
}

func aggregateKiln(k *KPIs, kiln *plant.KilnOperation, alt *plant.AlternativeFuel) {
	if kiln == nil {
		m := Unavailable("no kiln_operations row")
		k.BurningZoneTemp, k.SpecificHeat, k.ThermalSubstitution = m, m, m
		return
	}
	k.BurningZoneTemp = reported(kiln.BurningZoneTempC, "burning_zone_temp_c")
	k.SpecificHeat = reported(kiln.SpecificHeatMJkg, "specific_heat_consumption_mjkg")
	k.ThermalSubstitution = thermalSubstitution(kiln, alt)
}

// thermalSubstitution prefers computing TSR from fuel rates and falls back to
// the rate the kiln reports itself.
func thermalSubstitution(kiln *plant.KilnOperation, alt *plant.AlternativeFuel) Metric {
	if kiln.CoalRateTPH != nil && kiln.AltFuelRateTPH != nil {
		fuelType := kiln.AltFuelType
		if fuelType == "" && alt != nil {
			fuelType = alt.FuelType
		}
		coalHeat, err := calc.FuelHeat("coal", *kiln.CoalRateTPH)
		if err != nil {
			return Invalid(err.Error())
		}
		altHeat, err := calc.FuelHeat(fuelType, *kiln.AltFuelRateTPH)
		if err != nil {
			return Invalid(err.Error())
		}
		return fromCalc(calc.ThermalSubstitutionRate(altHeat, coalHeat+altHeat))
	}
	return reported(kiln.ThermalSubstitutionPct, "fuel rates and thermal_substitution_pct")
}

func aggregateQuality(k *KPIs, q *plant.QualityControl) {
	if q == nil {
		m := Unavailable("no quality_control row")
		k.QualityScore, k.Strength28d, k.Soundness, k.CementFineness = m, m, m, m
		return
	}
	k.QualityScore = reported(q.AIQualityScore, "ai_quality_score")
	if v, ok := calc.Strength28d(q.CompressiveStrength1dMPa, q.CompressiveStrength7dMPa); ok {
		k.Strength28d = Available(v)
	} else {
		k.Strength28d = Unavailable("compressive strength missing")
	}
	k.Soundness = reported(q.SoundnessMM, "soundness_mm")
	k.CementFineness = reported(q.FinenessBlaineCm2g, "fineness_blaine_cm2g")
}

func aggregateUtilities(k *KPIs, rows []*plant.UtilitiesMonitoring) {
	var (
		power, eff   float64
		nPower, nEff int
	)
	seen := map[string]bool{}
	for _, row := range rows {
		if row == nil {
			continue
		}
		// rows arrive newest first; only the latest reading per equipment counts
		if name := row.EquipmentName; name != "" {
			if seen[name] {
				continue
			}
			seen[name] = true
		}
		if row.PowerKW != nil {
			power += *row.PowerKW
			nPower++
		}
		if row.EfficiencyPct != nil {
			eff += *row.EfficiencyPct
			nEff++
		}
	}
	if nPower == 0 {
		k.UtilitiesPower = Unavailable("no utilities power readings")
	} else {
		k.UtilitiesPower = Available(power)
	}
	if nEff == 0 {
		k.UtilitiesEfficiency = Unavailable("no utilities efficiency readings")
	} else {
		k.UtilitiesEfficiency = Available(eff / float64(nEff))
	}
}

func reported(v *float64, column string) Metric {
	if v == nil {
		return Unavailable(column + " missing")
	}
	return Available(*v)
}

type field struct {
	v    *float64
	name string
}

// firstMissing returns the column name of the first nil field.
func firstMissing(fields ...field) string {
	for _, f := range fields {
		if f.v == nil {
			return f.name
		}
	}
	return ""
}
