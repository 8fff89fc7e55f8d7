package messages

import "time"

// AdvisoryEvent is emitted when the advisory service decides a sensor is
// reporting crop stress. Published on event/advisory/{field}/{sensor}.
type AdvisoryEvent struct {
	FieldID  string `json:"field_id"`
	SensorID string `json:"sensor_id"`
	// Kind: water_stress | heat_stress | disease_risk
	Kind     string `json:"kind"`
	Severity string `json:"severity"` // info|warning|critical

	StressScore    float64 `json:"stress_score"`
	ET0MM          float64 `json:"et0_mm"`
	RainMM         float64 `json:"rain_mm"`
	RemainingToday float64 `json:"remaining_today"`

	Timestamp time.Time `json:"timestamp"`
}
