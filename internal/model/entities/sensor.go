package entities

// SensorKind distinguishes the probe hardware deployed in a field.
type SensorKind string

const (
	// KindDHT11 is the low-cost temperature/humidity probe.
	KindDHT11 SensorKind = "dht11"
	// KindSoil is a capacitive soil-moisture probe.
	KindSoil SensorKind = "soil"
)

// Sensor represents a single probe installed in a field.
type Sensor struct {
	ID        string     `json:"id"`
	FieldID   string     `json:"field_id"`
	Kind      SensorKind `json:"kind"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	DepthCM   int        `json:"depth_cm"` // probe depth, 0 for above-ground units
}
