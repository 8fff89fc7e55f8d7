package sensor_simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/agri-ai/portal/internal/model"
)

// ====== Tunables ======
const (
	// moisture loses this fraction per minute with no irrigation or rain.
	defaultDecayPerMin = 0.001

	// defaultSeed when SoilGrids is unreachable.
	defaultSeed = 0.30 // 30%

	// diurnal temperature cycle for the simulated canopy.
	tempMeanC      = 28.0
	tempAmplitudeC = 6.0

	// humidity swings opposite to temperature.
	humidityMeanPct      = 75.0
	humidityAmplitudePct = 15.0

	// soilGridsURL: fetched once at startup, never per tick.
	soilGridsURL = "https://rest.isric.org/soilgrids/v2.0/properties/query?lat=%f&lon=%f&property=wv0010"
)

// DataGenerator keeps the internal moisture state and synthesizes DHT11
// temperature/humidity around a diurnal cycle. At most ONE optional
// SoilGrids fetch happens at startup.
type DataGenerator struct {
	mu          sync.Mutex
	seeded      bool
	last        time.Time
	moisture    float64 // [0..1]
	decayPerMin float64
	rng         *rand.Rand
	httpClient  *http.Client
}

func NewDataGenerator(decayPerMin float64, seed int64) *DataGenerator {
	if decayPerMin <= 0 {
		decayPerMin = defaultDecayPerMin
	}
	return &DataGenerator{
		decayPerMin: decayPerMin,
		rng:         rand.New(rand.NewSource(seed)),
		httpClient:  &http.Client{Timeout: 8 * time.Second},
	}
}

// SeedFromSoilGrids does a single fetch at startup. On failure the
// default seed (30%) is used.
func (g *DataGenerator) SeedFromSoilGrids(ctx context.Context, s *model.Sensor) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seeded {
		return
	}

	seed := defaultSeed
	if s.Latitude != 0 || s.Longitude != 0 {
		if m, err := g.fetchSoilMoisture(ctx, s.Latitude, s.Longitude); err == nil && m >= 0 {
			seed = m
		}
	}

	g.moisture = clamp01(seed)
	g.last = time.Now().UTC()
	g.seeded = true
}

// Next advances the internal state and returns a SensorReading.
func (g *DataGenerator) Next(sensor *model.Sensor) (model.SensorReading, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	if !g.seeded {
		g.moisture = defaultSeed
		g.last = now
		g.seeded = true
	}

	dtMin := now.Sub(g.last).Minutes()
	if dtMin < 0 {
		dtMin = 0
	}
	g.moisture = clamp01(g.moisture - g.decayPerMin*dtMin)
	g.last = now

	// diurnal cycle peaking at 14:00 UTC+5:30ish; noise on top
	hour := float64(now.Hour()) + float64(now.Minute())/60.0
	phase := 2 * math.Pi * (hour - 8.5) / 24.0
	temp := tempMeanC + tempAmplitudeC*math.Sin(phase) + g.rng.NormFloat64()*0.4
	hum := humidityMeanPct - humidityAmplitudePct*math.Sin(phase) + g.rng.NormFloat64()*1.5
	hum = math.Min(100, math.Max(0, hum))

	return model.SensorReading{
		FieldID:      sensor.FieldID,
		SensorID:     sensor.ID,
		TemperatureC: round1(temp),
		HumidityPct:  round1(hum),
		MoisturePct:  round1(g.moisture * 100),
		Aggregated:   false,
		Timestamp:    now,
	}, nil
}

// ApplyRain bumps the moisture state, e.g. when the simulation scenario
// includes a rain event.
func (g *DataGenerator) ApplyRain(mm float64) {
	if g == nil || mm <= 0 {
		return
	}
	// 1 mm of rain on a rooting zone of ~100 mm storage ≈ +1%
	inc := mm / 100.0
	g.mu.Lock()
	g.moisture = clamp01(g.moisture + inc)
	g.mu.Unlock()
}

// ===== Helpers =====

func (g *DataGenerator) fetchSoilMoisture(ctx context.Context, lat, lon float64) (float64, error) {
	url := fmt.Sprintf(soilGridsURL, lat, lon)
	var lastErr error

	attemptOnce := func() (val float64, retry bool, err error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return -1, true, err
		}
		req.Header.Set("User-Agent", "agri-portal-sensor-simulator/1.0")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return -1, true, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return -1, true, err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var parsed any
			if err := json.Unmarshal(body, &parsed); err != nil {
				return -1, true, err
			}
			if m := extractMoistureHeuristic(parsed); m >= 0 {
				return normalizeWV(m), false, nil
			}
			return -1, true, errors.New("soilgrids: moisture field not found")
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return -1, true, fmt.Errorf("soilgrids HTTP %d", resp.StatusCode)
		default:
			return -1, false, fmt.Errorf("soilgrids HTTP %d: %s", resp.StatusCode, string(body))
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		val, retry, err := attemptOnce()
		if err == nil {
			return val, nil
		}
		lastErr = err
		if !retry {
			return -1, lastErr
		}
		if attempt == 0 {
			time.Sleep(time.Duration(rand.Intn(400)+600) * time.Millisecond)
		}
	}
	return -1, lastErr
}

// extractMoistureHeuristic walks the common shapes of the SoilGrids
// response looking for a numeric wv0010 median:
//   - {"properties":{"layers":[{"name":"wv0010","depths":[{"values":{"Q0.5":0.27}}]}]}}
//   - {"features":[{"properties":{"layers":[...]}}]}
func extractMoistureHeuristic(v any) float64 {
	m, ok := v.(map[string]any)
	if !ok {
		return -1
	}
	if feats, ok := m["features"].([]any); ok && len(feats) > 0 {
		if f0, ok := feats[0].(map[string]any); ok {
			if p, ok := f0["properties"].(map[string]any); ok {
				if x := extractFromProperties(p); x >= 0 {
					return x
				}
			}
		}
	}
	if p, ok := m["properties"].(map[string]any); ok {
		if x := extractFromProperties(p); x >= 0 {
			return x
		}
	}
	return -1
}

func extractFromProperties(p map[string]any) float64 {
	layers, ok := p["layers"].([]any)
	if !ok || len(layers) == 0 {
		return -1
	}
	l0, ok := layers[0].(map[string]any)
	if !ok {
		return -1
	}
	depths, ok := l0["depths"].([]any)
	if !ok || len(depths) == 0 {
		return -1
	}
	d0, ok := depths[0].(map[string]any)
	if !ok {
		return -1
	}
	values, ok := d0["values"].(map[string]any)
	if !ok {
		return -1
	}
	for _, key := range []string{"Q0.5", "mean"} {
		if f, ok := values[key].(float64); ok && f >= 0 {
			return f
		}
	}
	return -1
}

// normalizeWV maps SoilGrids volumetric water content to [0..1].
// The API publishes 0.1 cm3/cm3 units, so 270 means 0.27.
func normalizeWV(v float64) float64 {
	if v > 1 {
		v = v / 1000.0
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
