package plant

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SourceRule = "rule"
	SourceAI   = "ai"
)

// Process areas a recommendation can target.
const (
	AreaRawMaterial = "raw_material"
	AreaGrinding    = "grinding"
	AreaClinkering  = "clinkering"
	AreaQuality     = "quality"
	AreaFuel        = "alternative_fuel"
	AreaUtilities   = "utilities"
	AreaPlant       = "plant"
)

// Recommendation is an advisory row. Priority runs 1..10, higher is more severe.
type Recommendation struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProcessArea          string     `gorm:"column:process_area;not null;index" json:"process_area"`
	RecommendationType   string     `gorm:"column:recommendation_type;not null" json:"recommendation_type"`
	Priority             int        `gorm:"column:priority_level;not null;index" json:"priority"`
	Description          string     `gorm:"column:description;not null" json:"description"`
	Source               string     `gorm:"column:source;not null;default:rule" json:"source"`
	RuleName             string     `gorm:"column:rule_name;index" json:"rule_name,omitempty"`
	EstimatedSavingsKWh  *float64   `gorm:"column:estimated_savings_kwh" json:"estimated_savings_kwh"`
	EstimatedSavingsCost *float64   `gorm:"column:estimated_savings_cost" json:"estimated_savings_cost"`
	ActionTaken          bool       `gorm:"column:action_taken;not null;default:false;index" json:"action_taken"`
	ActionTimestamp      *time.Time `gorm:"column:action_timestamp" json:"action_timestamp"`
	CreatedAt            time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Recommendation) TableName() string { return "ai_recommendations" }

// OptimizationSummary is persisted once per optimization analysis.
type OptimizationSummary struct {
	ID                   int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EnergySavedKWh       *float64       `gorm:"column:energy_saved_kwh" json:"energy_saved_kwh"`
	CostSavedUSD         *float64       `gorm:"column:cost_saved_usd" json:"cost_saved_usd"`
	CO2ReducedKg         *float64       `gorm:"column:co2_reduced_kg" json:"co2_reduced_kg"`
	PlantEfficiencyScore *float64       `gorm:"column:plant_efficiency_score" json:"plant_efficiency_score"`
	ModelConfidence      float64        `gorm:"column:model_confidence;not null" json:"model_confidence"`
	Report               datatypes.JSON `gorm:"column:report;type:jsonb" json:"report"`
	CreatedAt            time.Time      `gorm:"not null;index" json:"created_at"`
}

func (OptimizationSummary) TableName() string { return "optimization_results" }

// Models lists every table this service migrates when auto-migration is enabled.
func Models() []any {
	return []any{
		&RawMaterialFeed{},
		&GrindingOperation{},
		&KilnOperation{},
		&UtilitiesMonitoring{},
		&QualityControl{},
		&AlternativeFuel{},
		&Recommendation{},
		&OptimizationSummary{},
	}
}
