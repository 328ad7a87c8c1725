// Package calc holds the pure process-engineering formulas used across the plant
// pipeline. Every function is deterministic and side-effect free; results that
// would be infinite or NaN are reported through ErrUndefined instead.
package calc

import (
	"errors"
	"math"
)

var (
	// ErrUndefined is returned when a denominator is zero or negative.
	ErrUndefined = errors.New("calc: undefined for given inputs")
	// ErrInvalidInput is returned for negative, NaN or infinite inputs.
	ErrInvalidInput = errors.New("calc: invalid input")
)

// Optimal LSF band in percent.
const (
	LSFLowPct  = 92.0
	LSFHighPct = 98.0
)

// LSF returns the lime saturation factor as a ratio:
// CaO / (2.8·SiO2 + 1.2·Al2O3 + 0.65·Fe2O3).
func LSF(cao, sio2, al2o3, fe2o3 float64) (float64, error) {
	if err := checkInputs(cao, sio2, al2o3, fe2o3); err != nil {
		return 0, err
	}
	if cao <= 0 {
		return 0, ErrInvalidInput
	}
	denom := 2.8*sio2 + 1.2*al2o3 + 0.65*fe2o3
	if denom <= 0 {
		return 0, ErrUndefined
	}
	return finite(cao / denom)
}

// LSFPercent is LSF scaled to percent, the form the optimal band is quoted in.
func LSFPercent(cao, sio2, al2o3, fe2o3 float64) (float64, error) {
	v, err := LSF(cao, sio2, al2o3, fe2o3)
	if err != nil {
		return 0, err
	}
	return finite(v * 100)
}

// SilicaModulus is SiO2 / (Al2O3 + Fe2O3).
func SilicaModulus(sio2, al2o3, fe2o3 float64) (float64, error) {
	if err := checkInputs(sio2, al2o3, fe2o3); err != nil {
		return 0, err
	}
	denom := al2o3 + fe2o3
	if denom <= 0 {
		return 0, ErrUndefined
	}
	return finite(sio2 / denom)
}

// AluminaModulus is Al2O3 / Fe2O3.
func AluminaModulus(al2o3, fe2o3 float64) (float64, error) {
	if err := checkInputs(al2o3, fe2o3); err != nil {
		return 0, err
	}
	if fe2o3 <= 0 {
		return 0, ErrUndefined
	}
	return finite(al2o3 / fe2o3)
}

// BogueC3S estimates the alite content in percent. Negative estimates clamp to zero.
func BogueC3S(cao, sio2, al2o3, fe2o3 float64) (float64, error) {
	if err := checkInputs(cao, sio2, al2o3, fe2o3); err != nil {
		return 0, err
	}
	c3s := 4.07*cao - 7.6*sio2 - 6.72*al2o3 - 1.43*fe2o3
	return math.Max(0, c3s), nil
}

func checkInputs(vals ...float64) error {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidInput
		}
	}
	return nil
}

// finite guards results computed from already validated inputs.
func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrUndefined
	}
	return v, nil
}
