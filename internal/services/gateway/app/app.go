// Package app assembles the portal gateway: one dashboard endpoint
// fanning out to the backend services, each behind its own circuit
// breaker with a last-good cache, plus a chat proxy to the advisor.
package app

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	IngestBaseURL  string
	WeatherBaseURL string
	MarketBaseURL  string
	NewsBaseURL    string
	AdvisorBaseURL string

	// portal defaults applied to the dashboard fan-out
	DefaultLat       float64
	DefaultLon       float64
	DefaultCommodity string

	HTTPTimeout     time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration

	AllowOrigin string
}

type Gateway struct {
	cfg Config
	log *zap.Logger

	ingest  *Upstream
	weather *Upstream
	market  *Upstream
	news    *Upstream
	advisor *Upstream

	// last-good sections served when an upstream is down
	cacheMu      sync.Mutex
	lastReadings []Reading
	lastWeather  []ForecastDay
	lastPrices   []Price
	lastNews     []Headline
}

func NewGateway(cfg Config, log *zap.Logger) *Gateway {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 3 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 15 * time.Second
	}
	mk := func(name, base string) *Upstream {
		return NewUpstream(name, base, cfg.HTTPTimeout, cfg.BreakerFailures, cfg.BreakerOpenFor)
	}
	return &Gateway{
		cfg:     cfg,
		log:     log,
		ingest:  mk("ingest", cfg.IngestBaseURL),
		weather: mk("weather", cfg.WeatherBaseURL),
		market:  mk("market", cfg.MarketBaseURL),
		news:    mk("news", cfg.NewsBaseURL),
		advisor: mk("advisor", cfg.AdvisorBaseURL),
	}
}

// Routes registers the gateway endpoints on a fresh mux.
func (g *Gateway) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard/data", g.HandleDashboard)
	mux.HandleFunc("/chat", g.HandleChat)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (g *Gateway) setCORS(w http.ResponseWriter) {
	if g.cfg.AllowOrigin == "" {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", g.cfg.AllowOrigin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleDashboard fans out to the four read upstreams in parallel and
// degrades section by section: a dead upstream serves its last-good
// snapshot instead of failing the whole payload.
func (g *Gateway) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { dashboardDuration.Observe(time.Since(start).Seconds()) }()
	g.setCORS(w)

	ctx, cancel := context.WithTimeout(r.Context(), g.cfg.HTTPTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		readings []Reading
		forecast []ForecastDay
		prices   []Price
		news     []Headline

		readingsErr, weatherErr, pricesErr, newsErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		// the ingest service returns a bare array
		readingsErr = g.ingest.GetJSON(ctx, "/readings/latest", &readings)
	}()
	go func() {
		defer wg.Done()
		var env forecastEnvelope
		path := "/weather/forecast?" + url.Values{
			"lat":  {trimFloat(g.cfg.DefaultLat)},
			"lon":  {trimFloat(g.cfg.DefaultLon)},
			"days": {"3"},
		}.Encode()
		weatherErr = g.weather.GetJSON(ctx, path, &env)
		forecast = env.Daily
	}()
	go func() {
		defer wg.Done()
		var env pricesEnvelope
		path := "/prices/latest?" + url.Values{"commodity": {g.cfg.DefaultCommodity}}.Encode()
		pricesErr = g.market.GetJSON(ctx, path, &env)
		prices = env.Prices
	}()
	go func() {
		defer wg.Done()
		var env newsEnvelope
		newsErr = g.news.GetJSON(ctx, "/news/latest?limit=10", &env)
		news = env.Articles
	}()
	wg.Wait()

	// fresh readings are sorted before they enter the cache; cached
	// slices are never mutated after storing, so concurrent requests
	// may share them read-only
	sortReadings(readings)

	g.cacheMu.Lock()
	if readingsErr != nil || len(readings) == 0 {
		if readingsErr != nil {
			upstreamFailures.WithLabelValues("ingest").Inc()
		}
		readings = g.lastReadings
		lastGoodServed.WithLabelValues("readings").Inc()
	} else {
		g.lastReadings = readings
	}
	if weatherErr != nil || len(forecast) == 0 {
		if weatherErr != nil {
			upstreamFailures.WithLabelValues("weather").Inc()
		}
		forecast = g.lastWeather
		lastGoodServed.WithLabelValues("weather").Inc()
	} else {
		g.lastWeather = forecast
	}
	if pricesErr != nil || len(prices) == 0 {
		if pricesErr != nil {
			upstreamFailures.WithLabelValues("market").Inc()
		}
		prices = g.lastPrices
		lastGoodServed.WithLabelValues("prices").Inc()
	} else {
		g.lastPrices = prices
	}
	if newsErr != nil || len(news) == 0 {
		if newsErr != nil {
			upstreamFailures.WithLabelValues("news").Inc()
		}
		news = g.lastNews
		lastGoodServed.WithLabelValues("news").Inc()
	} else {
		g.lastNews = news
	}
	g.cacheMu.Unlock()

	data := DashboardData{
		Readings: orEmptyReadings(readings),
		Weather:  orEmptyForecast(forecast),
		Prices:   orEmptyPrices(prices),
		News:     orEmptyNews(news),
		Stats:    moistureStats(readings),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)

	g.log.Info("dashboard served",
		zap.Duration("took", time.Since(start)),
		zap.Int("readings", len(data.Readings)),
		zap.Int("prices", len(data.Prices)),
		zap.Int("news", len(data.News)),
		zap.String("cb_ingest", g.ingest.State().String()),
		zap.String("cb_weather", g.weather.State().String()))
}

// HandleChat proxies the farmer's question to the advisor service.
func (g *Gateway) HandleChat(w http.ResponseWriter, r *http.Request) {
	g.setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 35*time.Second)
	defer cancel()

	resp, status, err := g.advisor.PostJSON(ctx, "/chat", body)
	if err != nil {
		g.log.Warn("chat proxy failed", zap.Error(err))
		http.Error(w, "advisor unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(resp)
}

func sortReadings(readings []Reading) {
	sort.Slice(readings, func(i, j int) bool {
		if readings[i].FieldID != readings[j].FieldID {
			return readings[i].FieldID < readings[j].FieldID
		}
		return readings[i].SensorID < readings[j].SensorID
	})
}

func moistureStats(readings []Reading) MoistureStats {
	if len(readings) == 0 {
		return MoistureStats{}
	}
	var sum float64
	minv := math.MaxFloat64
	maxv := -math.MaxFloat64
	for _, s := range readings {
		v := s.MoisturePct
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	n := float64(len(readings))
	return MoistureStats{
		Mean: math.Round(sum/n*10) / 10,
		Min:  minv,
		Max:  maxv,
	}
}

func trimFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func orEmptyReadings(v []Reading) []Reading {
	if v == nil {
		return []Reading{}
	}
	return v
}
func orEmptyForecast(v []ForecastDay) []ForecastDay {
	if v == nil {
		return []ForecastDay{}
	}
	return v
}
func orEmptyPrices(v []Price) []Price {
	if v == nil {
		return []Price{}
	}
	return v
}
func orEmptyNews(v []Headline) []Headline {
	if v == nil {
		return []Headline{}
	}
	return v
}
