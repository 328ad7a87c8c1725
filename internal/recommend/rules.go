// Package recommend evaluates threshold rules over plant KPIs and, when a text
// generator is configured, asks it for one extra free-text recommendation.
package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
)

type Direction string

const (
	Below Direction = "below"
	Above Direction = "above"
)

// Rule fires when its metric is strictly beyond Threshold in Direction.
// A value equal to the threshold never fires, and neither does an
// unavailable or invalid metric.
type Rule struct {
	Name        string    `yaml:"name" json:"name"`
	Metric      string    `yaml:"metric" json:"metric"`
	Direction   Direction `yaml:"direction" json:"direction"`
	Threshold   float64   `yaml:"threshold" json:"threshold"`
	Priority    int       `yaml:"priority" json:"priority"`
	ProcessArea string    `yaml:"process_area" json:"process_area"`
	Type        string    `yaml:"type" json:"type"`
	Description string    `yaml:"description" json:"description"`
}

func (r Rule) Fires(k kpi.KPIs) (float64, bool) {
	m, ok := k.Lookup(r.Metric)
	if !ok {
		return 0, false
	}
	v, ok := m.Float()
	if !ok {
		return 0, false
	}
	switch r.Direction {
	case Below:
		return v, v < r.Threshold
	case Above:
		return v, v > r.Threshold
	}
	return v, false
}

func (r Rule) Validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("rule without name")
	case r.Direction != Below && r.Direction != Above:
		return fmt.Errorf("rule %s: direction must be %q or %q", r.Name, Below, Above)
	case r.Priority < 1 || r.Priority > 10:
		return fmt.Errorf("rule %s: priority %d outside 1..10", r.Name, r.Priority)
	case r.Description == "":
		return fmt.Errorf("rule %s: empty description", r.Name)
	}
	if _, ok := (kpi.KPIs{}).Lookup(r.Metric); !ok {
		return fmt.Errorf("rule %s: unknown metric %q", r.Name, r.Metric)
	}
	return nil
}

// DefaultRules is the built-in rule table, evaluated in order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "lsf_low", Metric: kpi.MetricLSFPct, Direction: Below, Threshold: 92, Priority: 7, ProcessArea: plant.AreaRawMaterial, Type: "chemistry_adjustment",
			Description: "Increase CaO content - LSF too low, risk of under-burning"},
		{Name: "lsf_high", Metric: kpi.MetricLSFPct, Direction: Above, Threshold: 98, Priority: 7, ProcessArea: plant.AreaRawMaterial, Type: "chemistry_adjustment",
			Description: "Reduce CaO content - LSF too high, risk of over-burning and higher energy use"},
		{Name: "silica_modulus_low", Metric: kpi.MetricSilicaModulus, Direction: Below, Threshold: 2.2, Priority: 5, ProcessArea: plant.AreaRawMaterial, Type: "chemistry_adjustment",
			Description: "Silica modulus low - raise siliceous component to improve burnability"},
		{Name: "silica_modulus_high", Metric: kpi.MetricSilicaModulus, Direction: Above, Threshold: 3.2, Priority: 5, ProcessArea: plant.AreaRawMaterial, Type: "chemistry_adjustment",
			Description: "Silica modulus high - hard burning expected, add flux (Al2O3/Fe2O3)"},
		{Name: "alumina_modulus_low", Metric: kpi.MetricAluminaModulus, Direction: Below, Threshold: 1.5, Priority: 5, ProcessArea: plant.AreaRawMaterial, Type: "chemistry_adjustment",
			Description: "Alumina modulus low - increase Al2O3 or reduce Fe2O3"},
		{Name: "alumina_modulus_high", Metric: kpi.MetricAluminaModulus, Direction: Above, Threshold: 2.5, Priority: 5, ProcessArea: plant.AreaRawMaterial, Type: "chemistry_adjustment",
			Description: "Alumina modulus high - increase Fe2O3 to lower liquid viscosity"},
		{Name: "sec_high", Metric: kpi.MetricSpecificEnergy, Direction: Above, Threshold: 40, Priority: 8, ProcessArea: plant.AreaGrinding, Type: "energy_optimization",
			Description: "High energy consumption - check grinding aids, mill settings"},
		{Name: "vrm_dp_low", Metric: kpi.MetricVRMDifferential, Direction: Below, Threshold: 65, Priority: 5, ProcessArea: plant.AreaGrinding, Type: "process_adjustment",
			Description: "VRM differential pressure low - increase feed or reduce airflow"},
		{Name: "vrm_dp_high", Metric: kpi.MetricVRMDifferential, Direction: Above, Threshold: 75, Priority: 6, ProcessArea: plant.AreaGrinding, Type: "process_adjustment",
			Description: "VRM differential pressure high - reduce feed or increase airflow"},
		{Name: "burning_zone_cold", Metric: kpi.MetricBurningZoneTemp, Direction: Below, Threshold: 1435, Priority: 6, ProcessArea: plant.AreaClinkering, Type: "process_adjustment",
			Description: "Burning zone temperature low - increase fuel rate toward 1450C target"},
		{Name: "burning_zone_hot", Metric: kpi.MetricBurningZoneTemp, Direction: Above, Threshold: 1465, Priority: 6, ProcessArea: plant.AreaClinkering, Type: "process_adjustment",
			Description: "Burning zone temperature high - reduce fuel rate toward 1450C target"},
		{Name: "specific_heat_high", Metric: kpi.MetricSpecificHeat, Direction: Above, Threshold: 3.7, Priority: 6, ProcessArea: plant.AreaClinkering, Type: "energy_optimization",
			Description: "High specific heat consumption - check combustion and heat recovery"},
		{Name: "tsr_low", Metric: kpi.MetricThermalSubstitution, Direction: Below, Threshold: 25, Priority: 4, ProcessArea: plant.AreaFuel, Type: "fuel_optimization",
			Description: "Alternative fuel usage low - opportunity for CO2 reduction"},
		{Name: "quality_score_low", Metric: kpi.MetricQualityScore, Direction: Below, Threshold: 90, Priority: 6, ProcessArea: plant.AreaQuality, Type: "quality_control",
			Description: "Quality score below target - review raw mix and burning conditions"},
		{Name: "strength_low", Metric: kpi.MetricStrength28d, Direction: Below, Threshold: 42.5, Priority: 7, ProcessArea: plant.AreaQuality, Type: "quality_control",
			Description: "Predicted 28-day strength below 42.5 MPa - increase C3S or fineness"},
		{Name: "soundness_high", Metric: kpi.MetricSoundness, Direction: Above, Threshold: 10, Priority: 6, ProcessArea: plant.AreaQuality, Type: "quality_control",
			Description: "Soundness expansion above 10 mm - check free lime and MgO"},
		{Name: "fineness_low", Metric: kpi.MetricCementFineness, Direction: Below, Threshold: 3500, Priority: 4, ProcessArea: plant.AreaQuality, Type: "quality_control",
			Description: "Cement fineness low - increase separator speed"},
		{Name: "fineness_high", Metric: kpi.MetricCementFineness, Direction: Above, Threshold: 4200, Priority: 4, ProcessArea: plant.AreaQuality, Type: "quality_control",
			Description: "Cement fineness high - reduce separator speed to save grinding energy"},
	}
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rule table. An empty path returns DefaultRules.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(raw)
}

func ParseRules(raw []byte) ([]Rule, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}
	seen := map[string]bool{}
	for _, r := range rf.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %s", r.Name)
		}
		seen[r.Name] = true
	}
	return rf.Rules, nil
}

// Evaluate returns one recommendation per firing rule, in rule order.
// It is pure and does not touch the store.
func Evaluate(rules []Rule, k kpi.KPIs) []*plant.Recommendation {
	out := []*plant.Recommendation{}
	for _, r := range rules {
		if _, fires := r.Fires(k); !fires {
			continue
		}
		out = append(out, &plant.Recommendation{
			ProcessArea:        r.ProcessArea,
			RecommendationType: r.Type,
			Priority:           r.Priority,
			Description:        r.Description,
			Source:             plant.SourceRule,
			RuleName:           r.Name,
		})
	}
	return out
}
