package plant

import "time"

// Sensor and lab rows are written by upstream ingestion; this service only reads
// them. Every measurement is a pointer so a missing column stays distinguishable
// from a genuine zero reading.

type RawMaterialFeed struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MaterialType string    `gorm:"column:material_type" json:"material_type,omitempty"`
	FeedRateTPH  *float64  `gorm:"column:feed_rate_tph" json:"feed_rate_tph"`
	MoisturePct  *float64  `gorm:"column:moisture_pct" json:"moisture_pct"`
	CaOPct       *float64  `gorm:"column:cao_pct" json:"cao_pct"`
	SiO2Pct      *float64  `gorm:"column:sio2_pct" json:"sio2_pct"`
	Al2O3Pct     *float64  `gorm:"column:al2o3_pct" json:"al2o3_pct"`
	Fe2O3Pct     *float64  `gorm:"column:fe2o3_pct" json:"fe2o3_pct"`
	SO3Pct       *float64  `gorm:"column:so3_pct" json:"so3_pct"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
}

func (RawMaterialFeed) TableName() string { return "raw_material_feed" }

type GrindingOperation struct {
	ID                       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MillID                   *int      `gorm:"column:mill_id" json:"mill_id"`
	MillType                 string    `gorm:"column:mill_type" json:"mill_type,omitempty"`
	TotalFeedRateTPH         *float64  `gorm:"column:total_feed_rate_tph" json:"total_feed_rate_tph"`
	MotorCurrentA            *float64  `gorm:"column:motor_current_a" json:"motor_current_a"`
	PowerConsumptionKW       *float64  `gorm:"column:power_consumption_kw" json:"power_consumption_kw"`
	DifferentialPressureMbar *float64  `gorm:"column:differential_pressure_mbar" json:"differential_pressure_mbar"`
	MillTemperatureC         *float64  `gorm:"column:mill_temperature_c" json:"mill_temperature_c"`
	FinenessBlaineCm2g       *float64  `gorm:"column:fineness_blaine_cm2g" json:"fineness_blaine_cm2g"`
	Residue45MicronPct       *float64  `gorm:"column:residue_45micron_pct" json:"residue_45micron_pct"`
	CreatedAt                time.Time `gorm:"not null;index" json:"created_at"`
}

func (GrindingOperation) TableName() string { return "grinding_operations" }

// IsVRM reports whether the row comes from a vertical roller mill.
func (g *GrindingOperation) IsVRM() bool {
	return g != nil && (g.MillType == "VRM" || g.MillType == "vrm")
}

type KilnOperation struct {
	ID                     int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	KilnID                 *int      `gorm:"column:kiln_id" json:"kiln_id"`
	BurningZoneTempC       *float64  `gorm:"column:burning_zone_temp_c" json:"burning_zone_temp_c"`
	PreheaterTempC         *float64  `gorm:"column:preheater_temp_c" json:"preheater_temp_c"`
	FuelRateTPH            *float64  `gorm:"column:fuel_rate_tph" json:"fuel_rate_tph"`
	CoalRateTPH            *float64  `gorm:"column:coal_rate_tph" json:"coal_rate_tph"`
	AltFuelRateTPH         *float64  `gorm:"column:alt_fuel_rate_tph" json:"alt_fuel_rate_tph"`
	AltFuelType            string    `gorm:"column:alt_fuel_type" json:"alt_fuel_type,omitempty"`
	ThermalSubstitutionPct *float64  `gorm:"column:thermal_substitution_pct" json:"thermal_substitution_pct"`
	OxygenPct              *float64  `gorm:"column:oxygen_pct" json:"oxygen_pct"`
	COppm                  *float64  `gorm:"column:co_ppm" json:"co_ppm"`
	NOxPpm                 *float64  `gorm:"column:nox_ppm" json:"nox_ppm"`
	CO2EmissionsTPH        *float64  `gorm:"column:co2_emissions_tph" json:"co2_emissions_tph"`
	SpecificHeatMJkg       *float64  `gorm:"column:specific_heat_consumption_mjkg" json:"specific_heat_consumption_mjkg"`
	CreatedAt              time.Time `gorm:"not null;index" json:"created_at"`
}

func (KilnOperation) TableName() string { return "kiln_operations" }

type UtilitiesMonitoring struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EquipmentName        string    `gorm:"column:equipment_name;index" json:"equipment_name"`
	PowerKW              *float64  `gorm:"column:power_kw" json:"power_kw"`
	BaselinePowerKW      *float64  `gorm:"column:baseline_power_kw" json:"baseline_power_kw"`
	EfficiencyPct        *float64  `gorm:"column:efficiency_pct" json:"efficiency_pct"`
	DaysSinceMaintenance *int      `gorm:"column:days_since_maintenance" json:"days_since_maintenance"`
	Status               string    `gorm:"column:status" json:"status,omitempty"`
	CreatedAt            time.Time `gorm:"not null;index" json:"created_at"`
}

func (UtilitiesMonitoring) TableName() string { return "utilities_monitoring" }

type QualityControl struct {
	ID                       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AIQualityScore           *float64  `gorm:"column:ai_quality_score" json:"ai_quality_score"`
	CompressiveStrength1dMPa *float64  `gorm:"column:compressive_strength_1d_mpa" json:"compressive_strength_1d_mpa"`
	CompressiveStrength7dMPa *float64  `gorm:"column:compressive_strength_7d_mpa" json:"compressive_strength_7d_mpa"`
	SoundnessMM              *float64  `gorm:"column:soundness_mm" json:"soundness_mm"`
	FinenessBlaineCm2g       *float64  `gorm:"column:fineness_blaine_cm2g" json:"fineness_blaine_cm2g"`
	CreatedAt                time.Time `gorm:"not null;index" json:"created_at"`
}

func (QualityControl) TableName() string { return "quality_control" }

type AlternativeFuel struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FuelType           string    `gorm:"column:fuel_type;index" json:"fuel_type"`
	HeatingValueMJkg   *float64  `gorm:"column:heating_value_mjkg" json:"heating_value_mjkg"`
	ConsumptionRateTPH *float64  `gorm:"column:consumption_rate_tph" json:"consumption_rate_tph"`
	MoisturePct        *float64  `gorm:"column:moisture_pct" json:"moisture_pct"`
	CreatedAt          time.Time `gorm:"not null;index" json:"created_at"`
}

func (AlternativeFuel) TableName() string { return "alternative_fuels" }
