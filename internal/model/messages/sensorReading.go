package messages

import "time"

// SensorReading is the payload published on sensor/reading/{field}/{sensor}
// and, with Aggregated=true, on sensor/aggregated/{field}/{sensor}.
type SensorReading struct {
	FieldID      string    `json:"field_id"`
	SensorID     string    `json:"sensor_id"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	MoisturePct  float64   `json:"moisture_pct"`
	Aggregated   bool      `json:"aggregated"`
	Timestamp    time.Time `json:"timestamp"`
}
