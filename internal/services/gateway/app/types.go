package app

// DTOs mirrored from the upstream services, kept local so the gateway
// does not import their packages.

type Reading struct {
	FieldID      string  `json:"field_id"`
	SensorID     string  `json:"sensor_id,omitempty"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	MoisturePct  float64 `json:"moisture_pct"`
	Time         string  `json:"time"`
}

type ForecastDay struct {
	Date        string  `json:"date"`
	TempMinC    float64 `json:"temp_min_c"`
	TempMaxC    float64 `json:"temp_max_c"`
	TempDayC    float64 `json:"temp_day_c"`
	HumidityPct float64 `json:"humidity_pct"`
	RainMM      float64 `json:"rain_mm"`
	ET0MM       float64 `json:"et0_mm"`
	Summary     string  `json:"summary,omitempty"`
}

type forecastEnvelope struct {
	Daily []ForecastDay `json:"daily"`
}

type Price struct {
	Commodity   string  `json:"commodity"`
	Variety     string  `json:"variety"`
	Market      string  `json:"market"`
	District    string  `json:"district"`
	State       string  `json:"state"`
	MinPrice    float64 `json:"min_price"`
	MaxPrice    float64 `json:"max_price"`
	ModalPrice  float64 `json:"modal_price"`
	ArrivalDate string  `json:"arrival_date"`
}

type pricesEnvelope struct {
	Prices []Price `json:"prices"`
}

type Headline struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	Summary     string `json:"summary,omitempty"`
	PublishedAt string `json:"published_at"`
}

type newsEnvelope struct {
	Articles []Headline `json:"articles"`
}

type MoistureStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// DashboardData is the single payload the portal frontend polls.
type DashboardData struct {
	Readings []Reading     `json:"readings"`
	Weather  []ForecastDay `json:"weather"`
	Prices   []Price       `json:"prices"`
	News     []Headline    `json:"news"`
	Stats    MoistureStats `json:"stats"`
}
