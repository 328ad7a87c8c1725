package kpi

type Status string

const (
	StatusOK Status = "ok"
	// StatusUnavailable means an input row or column was absent.
	StatusUnavailable Status = "unavailable"
	// StatusInvalid means inputs were present but the formula is undefined for them.
	StatusInvalid Status = "invalid"
)

// Metric is one computed KPI. Value is nil unless Status is StatusOK, so an
// absent reading is never confused with a zero reading.
type Metric struct {
	Value  *float64 `json:"value"`
	Status Status   `json:"status"`
	Reason string   `json:"reason,omitempty"`
}

func Available(v float64) Metric {
	return Metric{Value: &v, Status: StatusOK}
}

func Unavailable(reason string) Metric {
	return Metric{Status: StatusUnavailable, Reason: reason}
}

func Invalid(reason string) Metric {
	return Metric{Status: StatusInvalid, Reason: reason}
}

func fromCalc(v float64, err error) Metric {
	if err != nil {
		return Invalid(err.Error())
	}
	return Available(v)
}

// Float returns the value and whether the metric is usable.
func (m Metric) Float() (float64, bool) {
	if m.Status != StatusOK || m.Value == nil {
		return 0, false
	}
	return *m.Value, true
}

func (m Metric) OK() bool {
	_, ok := m.Float()
	return ok
}
