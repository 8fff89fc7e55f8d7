package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

// LatestReading is the payload exposed to the gateway.
type LatestReading struct {
	FieldID      string  `json:"field_id"`
	SensorID     string  `json:"sensor_id,omitempty"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	MoisturePct  float64 `json:"moisture_pct"`
	Time         string  `json:"time"` // RFC3339
}

type latestQueryParams struct {
	Minutes   int
	Limit     int
	TimeoutMS int
}

func parseLatest(r *http.Request, defMin, defLim, defTOms int) latestQueryParams {
	q := r.URL.Query()
	get := func(k string, def, min, max int) int {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				if n < min {
					return min
				}
				if max > 0 && n > max {
					return max
				}
				return n
			}
		}
		return def
	}
	return latestQueryParams{
		Minutes:   get("minutes", defMin, 1, 7*24*60),
		Limit:     get("limit", defLim, 1, 500),
		TimeoutMS: get("timeout_ms", defTOms, 200, 5000),
	}
}

func buildLatestFlux(bucket string, minutes, limit int) string {
	return fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%dm)
  |> filter(fn: (r) => r._measurement == "field_reading" and r.aggregated == "true")
  |> filter(fn: (r) => r._field == "temperature_c" or r._field == "humidity_pct" or r._field == "moisture_pct")
  |> pivot(rowKey: ["_time","field_id","sensor_id"], columnKey: ["_field"], valueColumn: "_value")
  |> group()
  |> sort(columns: ["_time"], desc: true)
  |> limit(n:%d)
`, bucket, minutes, limit)
}

func runLatest(w http.ResponseWriter, r *http.Request, influx influxdb2.Client, org, bucket string, defMin, defLim int) {
	p := parseLatest(r, defMin, defLim, 2000)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(p.TimeoutMS)*time.Millisecond)
	defer cancel()

	api := influx.QueryAPI(org)
	res, err := api.Query(ctx, buildLatestFlux(bucket, p.Minutes, p.Limit))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Error", "influx-query-error")
		_, _ = w.Write([]byte("[]"))
		return
	}
	defer func() { _ = res.Close() }()

	out := make([]LatestReading, 0, p.Limit)
	for res.Next() {
		rec := res.Record()

		lr := LatestReading{Time: rec.Time().UTC().Format(time.RFC3339)}
		if v, ok := rec.ValueByKey("field_id").(string); ok {
			lr.FieldID = v
		}
		if v, ok := rec.ValueByKey("sensor_id").(string); ok {
			lr.SensorID = v
		}
		lr.TemperatureC = toFloat(rec.ValueByKey("temperature_c"))
		lr.HumidityPct = toFloat(rec.ValueByKey("humidity_pct"))
		lr.MoisturePct = toFloat(rec.ValueByKey("moisture_pct"))

		out = append(out, lr)
	}
	if res.Err() != nil {
		w.Header().Set("X-Error", "influx-iter-error")
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	}
	return 0
}

// NewLatestReadingsHandler serves
// GET /readings/latest?limit=20[&minutes=1440][&timeout_ms=2000]
func NewLatestReadingsHandler(influx influxdb2.Client, org, bucket string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runLatest(w, r, influx, org, bucket, 1440, 20)
	})
}
