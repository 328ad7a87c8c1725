package calc

import (
	"math"
	"strings"
)

// Fuel calorific values in MJ/kg.
var calorificValues = map[string]float64{
	"coal":       25.0,
	"waste_tire": 32.5,
	"biomass":    18.7,
	"rdf":        15.5,
	"petcoke":    35.0,
}

const defaultCalorificValue = 25.0

// CalorificValue returns the MJ/kg heating value for a fuel type; unknown
// fuels fall back to the coal value.
func CalorificValue(fuel string) float64 {
	if cv, ok := calorificValues[strings.ToLower(strings.TrimSpace(fuel))]; ok {
		return cv
	}
	return defaultCalorificValue
}

// FuelHeat converts a feed rate in t/h to heat input in MJ/h.
func FuelHeat(fuel string, rateTPH float64) (float64, error) {
	if err := checkInputs(rateTPH); err != nil {
		return 0, err
	}
	return rateTPH * 1000 * CalorificValue(fuel), nil
}

// ThermalSubstitutionRate is the percentage of total heat supplied by
// alternative fuels.
func ThermalSubstitutionRate(altHeat, totalHeat float64) (float64, error) {
	if err := checkInputs(altHeat, totalHeat); err != nil {
		return 0, err
	}
	if totalHeat <= 0 {
		return 0, ErrUndefined
	}
	if altHeat > totalHeat {
		return 0, ErrInvalidInput
	}
	return finite(altHeat / totalHeat * 100)
}

// FuelMix is the result of rebalancing coal and one alternative fuel so the
// kiln receives the same heat at a target substitution rate.
type FuelMix struct {
	AltFuelType        string  `json:"alt_fuel_type"`
	CurrentTSR         float64 `json:"current_tsr_pct"`
	TargetTSR          float64 `json:"target_tsr_pct"`
	CurrentCoalTPH     float64 `json:"current_coal_tph"`
	CurrentAltTPH      float64 `json:"current_alt_fuel_tph"`
	OptimalCoalTPH     float64 `json:"optimal_coal_tph"`
	OptimalAltTPH      float64 `json:"optimal_alt_fuel_tph"`
	CoalReductionTPH   float64 `json:"coal_reduction_tph"`
	CO2ReductionTPH    float64 `json:"co2_reduction_tph"`
	CostSavingsPerHour float64 `json:"cost_savings_per_hour"`
}

// Per tonne figures used when pricing a fuel switch.
const (
	coalCO2Factor  = 2.4
	altCO2Factor   = 0.8
	coalCostPerTon = 150.0
	altCostPerTon  = 60.0
)

// OptimizeFuelMix holds total heat constant and splits it so that targetTSR
// percent comes from altType.
func OptimizeFuelMix(coalTPH, altTPH float64, altType string, targetTSR float64) (FuelMix, error) {
	if err := checkInputs(coalTPH, altTPH, targetTSR); err != nil {
		return FuelMix{}, err
	}
	if targetTSR > 100 {
		return FuelMix{}, ErrInvalidInput
	}
	coalHeat, _ := FuelHeat("coal", coalTPH)
	altHeat, _ := FuelHeat(altType, altTPH)
	total := coalHeat + altHeat
	current, err := ThermalSubstitutionRate(altHeat, total)
	if err != nil {
		return FuelMix{}, err
	}
	optAlt := total * targetTSR / 100 / (CalorificValue(altType) * 1000)
	optCoal := total * (100 - targetTSR) / 100 / (CalorificValue("coal") * 1000)
	coalReduction := coalTPH - optCoal
	return FuelMix{
		AltFuelType:        strings.ToLower(strings.TrimSpace(altType)),
		CurrentTSR:         current,
		TargetTSR:          targetTSR,
		CurrentCoalTPH:     coalTPH,
		CurrentAltTPH:      altTPH,
		OptimalCoalTPH:     optCoal,
		OptimalAltTPH:      optAlt,
		CoalReductionTPH:   coalReduction,
		CO2ReductionTPH:    coalReduction*coalCO2Factor - (optAlt-altTPH)*altCO2Factor,
		CostSavingsPerHour: coalReduction*coalCostPerTon - (optAlt-altTPH)*altCostPerTon,
	}, nil
}

// Strength28d estimates 28-day compressive strength in MPa. The 7-day value is
// preferred; the 1-day value is the fallback. ok is false when neither is present.
func Strength28d(s1d, s7d *float64) (v float64, ok bool) {
	if s7d != nil && valid(*s7d) {
		return *s7d * 1.42, true
	}
	if s1d != nil && valid(*s1d) {
		return *s1d * 3.2, true
	}
	return 0, false
}

func valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
