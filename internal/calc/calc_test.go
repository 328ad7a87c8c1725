package calc

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestLSFReferenceMix(t *testing.T) {
	got, err := LSF(64, 21, 5, 3)
	if err != nil {
		t.Fatalf("LSF: %v", err)
	}
	if !approx(got, 0.959, 0.0005) {
		t.Fatalf("LSF=%v want ~0.959", got)
	}
	pct, err := LSFPercent(64, 21, 5, 3)
	if err != nil {
		t.Fatalf("LSFPercent: %v", err)
	}
	if pct < LSFLowPct || pct > LSFHighPct {
		t.Fatalf("reference mix should sit inside the optimal band, got %v", pct)
	}
}

func TestLSFDeterministic(t *testing.T) {
	a, _ := LSF(65.2, 21.4, 5.1, 3.2)
	for i := 0; i < 100; i++ {
		b, _ := LSF(65.2, 21.4, 5.1, 3.2)
		if a != b {
			t.Fatalf("LSF not deterministic: %v != %v", a, b)
		}
	}
}

func TestLSFRejectsBadInputs(t *testing.T) {
	cases := []struct {
		name                    string
		cao, sio2, al2o3, fe2o3 float64
		want                    error
	}{
		{"zero denominator", 64, 0, 0, 0, ErrUndefined},
		{"zero cao", 0, 21, 5, 3, ErrInvalidInput},
		{"negative oxide", 64, -1, 5, 3, ErrInvalidInput},
		{"nan", math.NaN(), 21, 5, 3, ErrInvalidInput},
		{"inf", 64, math.Inf(1), 5, 3, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := LSF(tc.cao, tc.sio2, tc.al2o3, tc.fe2o3)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want %v (value %v)", err, tc.want, v)
			}
		})
	}
}

func TestModuli(t *testing.T) {
	sm, err := SilicaModulus(21, 5, 3)
	if err != nil || !approx(sm, 2.625, 1e-9) {
		t.Fatalf("SilicaModulus=%v err=%v", sm, err)
	}
	am, err := AluminaModulus(5, 2)
	if err != nil || !approx(am, 2.5, 1e-9) {
		t.Fatalf("AluminaModulus=%v err=%v", am, err)
	}
	if _, err := AluminaModulus(5, 0); !errors.Is(err, ErrUndefined) {
		t.Fatalf("want ErrUndefined, got %v", err)
	}
	if _, err := SilicaModulus(21, 0, 0); !errors.Is(err, ErrUndefined) {
		t.Fatalf("want ErrUndefined, got %v", err)
	}
}

func TestRatiosNeverOverflow(t *testing.T) {
	tiny := math.SmallestNonzeroFloat64
	if _, err := LSF(1e300, tiny, 0, 0); !errors.Is(err, ErrUndefined) {
		t.Fatalf("LSF overflow: %v", err)
	}
	if _, err := SilicaModulus(1e10, tiny, 0); !errors.Is(err, ErrUndefined) {
		t.Fatalf("SilicaModulus overflow: %v", err)
	}
	if _, err := AluminaModulus(1e10, tiny); !errors.Is(err, ErrUndefined) {
		t.Fatalf("AluminaModulus overflow: %v", err)
	}
}

func TestBogueC3SClampsAtZero(t *testing.T) {
	v, err := BogueC3S(10, 21, 5, 3)
	if err != nil {
		t.Fatalf("BogueC3S: %v", err)
	}
	if v != 0 {
		t.Fatalf("expected clamp to 0, got %v", v)
	}
	v, _ = BogueC3S(65, 21, 5, 3)
	if !approx(v, 4.07*65-7.6*21-6.72*5-1.43*3, 1e-9) {
		t.Fatalf("unexpected C3S %v", v)
	}
}

func TestSpecificEnergy(t *testing.T) {
	v, err := SpecificEnergy(4800, 100)
	if err != nil || v != 48 {
		t.Fatalf("SpecificEnergy=%v err=%v", v, err)
	}
	if _, err := SpecificEnergy(4800, 0); !errors.Is(err, ErrUndefined) {
		t.Fatalf("zero feed should be undefined, got %v", err)
	}
}

func TestThermalSubstitutionRate(t *testing.T) {
	v, err := ThermalSubstitutionRate(30, 100)
	if err != nil || !approx(v, 30, 1e-9) {
		t.Fatalf("TSR=%v err=%v", v, err)
	}
	if _, err := ThermalSubstitutionRate(0, 0); !errors.Is(err, ErrUndefined) {
		t.Fatalf("zero total heat should be undefined, got %v", err)
	}
	if _, err := ThermalSubstitutionRate(120, 100); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("alt heat above total should be invalid, got %v", err)
	}
}

func TestStrength28d(t *testing.T) {
	s1, s7 := 20.0, 35.0
	if v, ok := Strength28d(&s1, &s7); !ok || !approx(v, 49.7, 1e-9) {
		t.Fatalf("7-day path: %v %v", v, ok)
	}
	if v, ok := Strength28d(&s1, nil); !ok || !approx(v, 64, 1e-9) {
		t.Fatalf("1-day fallback: %v %v", v, ok)
	}
	if _, ok := Strength28d(nil, nil); ok {
		t.Fatalf("no strength data should be absent")
	}
}

func TestFuelHeatAndCalorificValues(t *testing.T) {
	if CalorificValue("RDF") != 15.5 {
		t.Fatalf("case-insensitive lookup failed")
	}
	if CalorificValue("unknown") != 25.0 {
		t.Fatalf("unknown fuel should default to coal")
	}
	h, err := FuelHeat("biomass", 2)
	if err != nil || !approx(h, 37400, 1e-9) {
		t.Fatalf("FuelHeat=%v err=%v", h, err)
	}
}

func TestOptimizeFuelMixKeepsHeatConstant(t *testing.T) {
	mix, err := OptimizeFuelMix(20, 5, "waste_tire", 40)
	if err != nil {
		t.Fatalf("OptimizeFuelMix: %v", err)
	}
	before := 20*25.0 + 5*32.5
	after := mix.OptimalCoalTPH*25.0 + mix.OptimalAltTPH*32.5
	if !approx(before, after, 1e-6) {
		t.Fatalf("heat not conserved: %v vs %v", before, after)
	}
	if !approx(mix.OptimalAltTPH*32.5/after*100, 40, 1e-6) {
		t.Fatalf("target TSR not met")
	}
	if _, err := OptimizeFuelMix(0, 0, "biomass", 30); !errors.Is(err, ErrUndefined) {
		t.Fatalf("no fuel should be undefined, got %v", err)
	}
}

func TestEnergySavings(t *testing.T) {
	s, err := ComputeEnergySavings(48, 25, 100, 0.15, 0.5)
	if err != nil {
		t.Fatalf("ComputeEnergySavings: %v", err)
	}
	if s.KWhPerHour != 2300 || !approx(s.CostPerHour, 345, 1e-9) || s.CO2KgPerHr != 1150 {
		t.Fatalf("unexpected savings %+v", s)
	}
	s, _ = ComputeEnergySavings(20, 25, 100, 0.15, 0.5)
	if s.KWhPerHour != 0 {
		t.Fatalf("below-target SEC must not report savings: %+v", s)
	}
}

func TestOEEAndEquipmentHealth(t *testing.T) {
	v, err := OEE(90, 95, 99)
	if err != nil || !approx(v, 84.645, 1e-9) {
		t.Fatalf("OEE=%v err=%v", v, err)
	}
	if _, err := OEE(120, 95, 99); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("percent above 100 should be invalid")
	}
	h, err := EquipmentHealth(100, 100, 30)
	if err != nil || h != 100 {
		t.Fatalf("healthy equipment scored %v err=%v", h, err)
	}
	h, _ = EquipmentHealth(150, 100, 150)
	if h != 40 {
		t.Fatalf("degraded equipment scored %v", h)
	}
	if _, err := EquipmentHealth(100, 0, 1); !errors.Is(err, ErrUndefined) {
		t.Fatalf("zero baseline should be undefined")
	}
}
