package entities

// CropPolicy holds the per-crop guard thresholds used by the advisory
// service and the daily alert budget that caps how much stress weight
// may be dispatched per sensor per day.
type CropPolicy struct {
	Crop string `json:"crop"`

	// MoistureFloorPct: soil moisture below this is water stress.
	MoistureFloorPct float64 `json:"moisture_floor_pct"`
	// TemperatureCeilC: canopy temperature above this is heat stress.
	TemperatureCeilC float64 `json:"temperature_ceil_c"`
	// HumidityDiseaseMinPct/..MaxPct: sustained humidity inside this band
	// favours fungal disease.
	HumidityDiseaseMinPct float64 `json:"humidity_disease_min_pct"`
	HumidityDiseaseMaxPct float64 `json:"humidity_disease_max_pct"`

	// DailyAlertBudget is the base stress weight allowed per day; the
	// advisory service tops it up with an ET0-driven term.
	DailyAlertBudget float64 `json:"daily_alert_budget"`
}
