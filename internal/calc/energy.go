package calc

import "math"

// SpecificEnergy returns grinding energy intensity in kWh per tonne.
func SpecificEnergy(powerKW, feedTPH float64) (float64, error) {
	if err := checkInputs(powerKW, feedTPH); err != nil {
		return 0, err
	}
	if feedTPH <= 0 {
		return 0, ErrUndefined
	}
	return finite(powerKW / feedTPH)
}

// SpecificHeat returns thermal energy per tonne of clinker in MJ/kg.
// fuelTPH·cv(MJ/kg) over clinkerTPH; the tonne units cancel.
func SpecificHeat(fuelTPH, cvMJkg, clinkerTPH float64) (float64, error) {
	if err := checkInputs(fuelTPH, cvMJkg, clinkerTPH); err != nil {
		return 0, err
	}
	if clinkerTPH <= 0 {
		return 0, ErrUndefined
	}
	return finite(fuelTPH * cvMJkg / clinkerTPH)
}

// EnergySavings is the potential saving from bringing SEC down to target at the
// given throughput. A plant already at or under target saves nothing.
type EnergySavings struct {
	KWhPerHour  float64 `json:"energy_saved_kwh"`
	CostPerHour float64 `json:"cost_saved_usd"`
	CO2KgPerHr  float64 `json:"co2_reduced_kg"`
}

func ComputeEnergySavings(sec, targetSEC, feedTPH, costPerKWh, co2KgPerKWh float64) (EnergySavings, error) {
	if err := checkInputs(sec, targetSEC, feedTPH, costPerKWh, co2KgPerKWh); err != nil {
		return EnergySavings{}, err
	}
	kwh := math.Max(0, (sec-targetSEC)*feedTPH)
	return EnergySavings{
		KWhPerHour:  kwh,
		CostPerHour: kwh * costPerKWh,
		CO2KgPerHr:  kwh * co2KgPerKWh,
	}, nil
}

// OEE combines availability, performance and quality percentages (0..100)
// into overall equipment effectiveness, also in percent.
func OEE(availability, performance, quality float64) (float64, error) {
	if err := checkInputs(availability, performance, quality); err != nil {
		return 0, err
	}
	if availability > 100 || performance > 100 || quality > 100 {
		return 0, ErrInvalidInput
	}
	return availability * performance * quality / 10000, nil
}

// EquipmentHealth scores a piece of equipment 0..100 from its power draw relative
// to baseline and the days since its last maintenance.
func EquipmentHealth(powerKW, baselineKW float64, daysSinceMaintenance int) (float64, error) {
	if err := checkInputs(powerKW, baselineKW); err != nil {
		return 0, err
	}
	if daysSinceMaintenance < 0 {
		return 0, ErrInvalidInput
	}
	if baselineKW <= 0 {
		return 0, ErrUndefined
	}
	score := 100.0
	deviation := math.Abs(powerKW-baselineKW) / baselineKW * 100
	if deviation > 10 {
		score -= math.Min(40, (deviation-10)*2)
	}
	if daysSinceMaintenance > 90 {
		score -= math.Min(30, float64(daysSinceMaintenance-90)/3)
	}
	return math.Max(0, score), nil
}
