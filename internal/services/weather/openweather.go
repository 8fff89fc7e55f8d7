// Package weather wraps the OpenWeather One Call API behind the portal's
// forecast and ET0 endpoints.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const defaultBaseURL = "https://api.openweathermap.org/data/3.0"

type owmDaily struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
		Day float64 `json:"day"`
	} `json:"temp"`
	Humidity float64 `json:"humidity"`
	Rain     float64 `json:"rain"`
	Summary  string  `json:"summary"`
}

type owmResp struct {
	Daily []owmDaily `json:"daily"`
}

// DailyForecast is the normalized forecast entry exposed by the API.
type DailyForecast struct {
	Date        string  `json:"date"` // YYYY-MM-DD, UTC
	TempMinC    float64 `json:"temp_min_c"`
	TempMaxC    float64 `json:"temp_max_c"`
	TempDayC    float64 `json:"temp_day_c"`
	HumidityPct float64 `json:"humidity_pct"`
	RainMM      float64 `json:"rain_mm"`
	ET0MM       float64 `json:"et0_mm"`
	Summary     string  `json:"summary,omitempty"`
}

type OWMClient struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func NewOWMClient(key string) *OWMClient {
	return &OWMClient{apiKey: key, baseURL: defaultBaseURL, hc: &http.Client{Timeout: 10 * time.Second}}
}

// SetBaseURL points the client at a different endpoint, used by tests.
func (c *OWMClient) SetBaseURL(u string) { c.baseURL = u }

func (c *OWMClient) fetchDaily(ctx context.Context, lat, lon float64) ([]owmDaily, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	url := fmt.Sprintf("%s/onecall?lat=%f&lon=%f&exclude=current,minutely,hourly,alerts&units=metric&appid=%s",
		c.baseURL, lat, lon, c.apiKey)

	var out owmResp
	op := func() error {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			err := fmt.Errorf("owm status %d: %s", resp.StatusCode, string(b))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&out)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 8 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx)); err != nil {
		return nil, err
	}
	if len(out.Daily) == 0 {
		return nil, fmt.Errorf("no daily data")
	}
	return out.Daily, nil
}

// Forecast returns up to days normalized daily entries for lat/lon.
func (c *OWMClient) Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyForecast, error) {
	daily, err := c.fetchDaily(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if days <= 0 || days > len(daily) {
		days = len(daily)
	}
	out := make([]DailyForecast, 0, days)
	for _, d := range daily[:days] {
		t := time.Unix(d.Dt, 0).UTC()
		out = append(out, DailyForecast{
			Date:        t.Format("2006-01-02"),
			TempMinC:    d.Temp.Min,
			TempMaxC:    d.Temp.Max,
			TempDayC:    d.Temp.Day,
			HumidityPct: d.Humidity,
			RainMM:      d.Rain,
			ET0MM:       etoHargreaves(d.Temp.Min, d.Temp.Max, raConstant),
			Summary:     d.Summary,
		})
	}
	return out, nil
}

// GetDailyET0AndRain implements the advisory service's WeatherClient:
// pick the daily entry closest to 'day' (UTC) and derive ET0.
func (c *OWMClient) GetDailyET0AndRain(ctx context.Context, lat, lon float64, day time.Time) (float64, float64, error) {
	daily, err := c.fetchDaily(ctx, lat, lon)
	if err != nil {
		return 0, 0, err
	}

	target := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	chosen := daily[0]
	minDelta := time.Duration(1<<63 - 1)
	for _, d := range daily {
		t := time.Unix(d.Dt, 0).UTC()
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		delta := target.Sub(date)
		if delta < 0 {
			delta = -delta
		}
		if delta < minDelta {
			minDelta = delta
			chosen = d
		}
	}

	et0 := etoHargreaves(chosen.Temp.Min, chosen.Temp.Max, raConstant)
	return et0, chosen.Rain, nil
}

// raConstant is a simplified extraterrestrial-radiation factor yielding
// mm/day without per-latitude tables.
const raConstant = 0.408

// etoHargreaves is the simplified Hargreaves reference evapotranspiration.
func etoHargreaves(tmin, tmax, ra float64) float64 {
	tmean := (tmin + tmax) / 2.0
	return 0.0023 * (tmean + 17.8) * math.Sqrt(math.Max(tmax-tmin, 0)) * ra
}
