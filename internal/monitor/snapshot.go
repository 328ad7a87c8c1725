package monitor

import (
	"github.com/yungbote/cementplant-backend/internal/domain/plant"
	"github.com/yungbote/cementplant-backend/internal/kpi"
)

// Snapshot is the data payload of every dashboard frame. Collections are
// always arrays, empty when the table has no recent row.
type Snapshot struct {
	RawMaterial        []*plant.RawMaterialFeed     `json:"raw_material"`
	Grinding           []*plant.GrindingOperation   `json:"grinding"`
	Kiln               []*plant.KilnOperation       `json:"kiln"`
	Quality            []*plant.QualityControl      `json:"quality"`
	AlternativeFuels   []*plant.AlternativeFuel     `json:"alternative_fuels"`
	Utilities          []*plant.UtilitiesMonitoring `json:"utilities"`
	Recommendations    []*plant.Recommendation      `json:"recommendations"`
	KPIs               kpi.KPIs                     `json:"kpis"`
	Overview           kpi.Overview                 `json:"overview"`
	LatestOptimization *plant.OptimizationSummary   `json:"latest_optimization"`
}

func buildSnapshot(src kpi.Sources, k kpi.KPIs, ov kpi.Overview, recs []*plant.Recommendation, latest *plant.OptimizationSummary) Snapshot {
	s := Snapshot{
		RawMaterial:        one(src.RawMaterial),
		Grinding:           one(src.Grinding),
		Kiln:               one(src.Kiln),
		Quality:            one(src.Quality),
		AlternativeFuels:   one(src.AlternativeFuel),
		Utilities:          []*plant.UtilitiesMonitoring{},
		Recommendations:    []*plant.Recommendation{},
		KPIs:               k,
		Overview:           ov,
		LatestOptimization: latest,
	}
	for _, u := range src.Utilities {
		if u != nil {
			s.Utilities = append(s.Utilities, u)
		}
	}
	for _, r := range recs {
		if r != nil {
			s.Recommendations = append(s.Recommendations, r)
		}
	}
	return s
}

func one[T any](row *T) []*T {
	if row == nil {
		return []*T{}
	}
	return []*T{row}
}
