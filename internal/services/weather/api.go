package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Forecaster is the slice of OWMClient the HTTP layer needs.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64, days int) ([]DailyForecast, error)
}

type API struct {
	fc    Forecaster
	cache *forecastCache
	log   *zap.Logger
}

func NewAPI(fc Forecaster, cacheTTL time.Duration, log *zap.Logger) *API {
	return &API{fc: fc, cache: newForecastCache(cacheTTL), log: log}
}

func parseCoord(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s: %q", name, raw)
	}
	return v, nil
}

func (a *API) forecastFor(ctx context.Context, lat, lon float64) ([]DailyForecast, error) {
	if data, ok := a.cache.get(lat, lon); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return data, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	data, err := a.fc.Forecast(ctx, lat, lon, 0)
	if err != nil {
		upstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	upstreamRequests.WithLabelValues("ok").Inc()
	a.cache.put(lat, lon, data)
	return data, nil
}

// HandleForecast serves GET /weather/forecast?lat=&lon=&days=
func (a *API) HandleForecast(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r, "lat")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lon, err := parseCoord(r, "lon")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil || days < 0 {
			http.Error(w, "bad days", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	data, err := a.forecastFor(ctx, lat, lon)
	if err != nil {
		a.log.Warn("forecast fetch failed", zap.Error(err))
		http.Error(w, "upstream weather unavailable", http.StatusBadGateway)
		return
	}
	if days > 0 && days < len(data) {
		data = data[:days]
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"lat": lat, "lon": lon, "daily": data})
}

// HandleET0 serves GET /weather/et0?lat=&lon=  returning today's ET0 and rain.
func (a *API) HandleET0(w http.ResponseWriter, r *http.Request) {
	lat, err := parseCoord(r, "lat")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lon, err := parseCoord(r, "lon")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	data, err := a.forecastFor(ctx, lat, lon)
	if err != nil {
		a.log.Warn("et0 fetch failed", zap.Error(err))
		http.Error(w, "upstream weather unavailable", http.StatusBadGateway)
		return
	}
	today := data[0]
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"date":    today.Date,
		"et0_mm":  today.ET0MM,
		"rain_mm": today.RainMM,
	})
}
