package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

const (
	readingsBody = `[
	  {"field_id":"field1","sensor_id":"s2","moisture_pct":40,"temperature_c":30,"humidity_pct":70,"time":"2026-08-24T10:00:00Z"},
	  {"field_id":"field1","sensor_id":"s1","moisture_pct":20,"temperature_c":31,"humidity_pct":72,"time":"2026-08-24T10:00:00Z"}
	]`
	weatherBody = `{"daily":[{"date":"2026-08-24","temp_min_c":24,"temp_max_c":32,"rain_mm":4,"et0_mm":0.13}]}`
	pricesBody  = `{"prices":[{"commodity":"Banana","market":"Aluva","modal_price":5200}]}`
	newsBody    = `{"articles":[{"id":"a1","title":"Monsoon update","link":"https://example.org/x","source":"AgriNews","category":"weather","published_at":"2026-08-23T08:00:00Z"}]}`
)

func testGateway(t *testing.T, ingest, weather, market, news, advisor string) *Gateway {
	t.Helper()
	return NewGateway(Config{
		IngestBaseURL:    ingest,
		WeatherBaseURL:   weather,
		MarketBaseURL:    market,
		NewsBaseURL:      news,
		AdvisorBaseURL:   advisor,
		DefaultLat:       9.93,
		DefaultLon:       76.26,
		DefaultCommodity: "Banana",
		HTTPTimeout:      2 * time.Second,
		BreakerFailures:  3,
		BreakerOpenFor:   time.Second,
		AllowOrigin:      "https://portal.example.org",
	}, zap.NewNop())
}

func TestDashboardAggregatesAllSections(t *testing.T) {
	ingest := httptest.NewServer(jsonHandler(readingsBody))
	weather := httptest.NewServer(jsonHandler(weatherBody))
	market := httptest.NewServer(jsonHandler(pricesBody))
	news := httptest.NewServer(jsonHandler(newsBody))
	defer ingest.Close()
	defer weather.Close()
	defer market.Close()
	defer news.Close()

	gw := testGateway(t, ingest.URL, weather.URL, market.URL, news.URL, "")

	req := httptest.NewRequest(http.MethodGet, "/dashboard/data", nil)
	rec := httptest.NewRecorder()
	gw.HandleDashboard(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://portal.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	var data DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))

	require.Len(t, data.Readings, 2)
	assert.Equal(t, "s1", data.Readings[0].SensorID, "readings are sorted by field then sensor")
	require.Len(t, data.Weather, 1)
	require.Len(t, data.Prices, 1)
	require.Len(t, data.News, 1)

	assert.Equal(t, 30.0, data.Stats.Mean)
	assert.Equal(t, 20.0, data.Stats.Min)
	assert.Equal(t, 40.0, data.Stats.Max)
}

func TestDashboardServesLastGoodWhenUpstreamDies(t *testing.T) {
	var fail atomic.Bool
	ingest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(readingsBody))
	}))
	defer ingest.Close()

	gw := testGateway(t, ingest.URL, "", "", "", "")

	// first call seeds the cache
	rec := httptest.NewRecorder()
	gw.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	fail.Store(true)

	rec = httptest.NewRecorder()
	gw.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data DashboardData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Len(t, data.Readings, 2, "stale readings are better than none")
}

func TestDashboardEmptySectionsAreArrays(t *testing.T) {
	gw := testGateway(t, "", "", "", "", "")

	rec := httptest.NewRecorder()
	gw.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"readings":[]`)
	assert.Contains(t, body, `"news":[]`)
}

func TestChatProxyForwardsToAdvisor(t *testing.T) {
	advisor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Plant in June.","lang":"en"}`))
	}))
	defer advisor.Close()

	gw := testGateway(t, "", "", "", "", advisor.URL)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"when to plant?"}`))
	rec := httptest.NewRecorder()
	gw.HandleChat(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Plant in June.")
}

func TestChatProxyAdvisorDown(t *testing.T) {
	gw := testGateway(t, "", "", "", "", "")

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"query":"hi"}`))
	rec := httptest.NewRecorder()
	gw.HandleChat(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer dead.Close()

	gw := testGateway(t, dead.URL, "", "", "", "")

	for i := 0; i < 6; i++ {
		rec := httptest.NewRecorder()
		gw.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
		require.Equal(t, http.StatusOK, rec.Code, "degraded payload still serves 200")
	}
	// breaker trips after 3 consecutive failures and stops hitting the upstream
	assert.Equal(t, int32(3), hits.Load())
}

func TestDashboardConcurrentRequestsWithFlappingUpstream(t *testing.T) {
	var calls atomic.Int32
	ingest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1)%2 == 0 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(readingsBody))
	}))
	defer ingest.Close()

	gw := testGateway(t, ingest.URL, "", "", "", "")

	// seed the last-good cache
	rec := httptest.NewRecorder()
	gw.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			gw.HandleDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			var data DashboardData
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
			if assert.Len(t, data.Readings, 2) {
				assert.Equal(t, "s1", data.Readings[0].SensorID)
				assert.Equal(t, "s2", data.Readings[1].SensorID)
			}
		}()
	}
	wg.Wait()
}

func TestMoistureStats(t *testing.T) {
	assert.Equal(t, MoistureStats{}, moistureStats(nil))

	stats := moistureStats([]Reading{
		{MoisturePct: 10}, {MoisturePct: 25}, {MoisturePct: 31},
	})
	assert.Equal(t, 22.0, stats.Mean)
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 31.0, stats.Max)
}
