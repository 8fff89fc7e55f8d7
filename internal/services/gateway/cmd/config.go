package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional TOML layout; environment variables win
// over file values so container deployments can override per instance.
type fileConfig struct {
	Listen      string `toml:"listen"`
	AllowOrigin string `toml:"allow_origin"`

	Upstreams struct {
		Ingest  string `toml:"ingest"`
		Weather string `toml:"weather"`
		Market  string `toml:"market"`
		News    string `toml:"news"`
		Advisor string `toml:"advisor"`
	} `toml:"upstreams"`

	Defaults struct {
		Lat       float64 `toml:"lat"`
		Lon       float64 `toml:"lon"`
		Commodity string  `toml:"commodity"`
	} `toml:"defaults"`

	Breaker struct {
		Failures  int `toml:"failures"`
		OpenForMs int `toml:"open_for_ms"`
		TimeoutMs int `toml:"timeout_ms"`
	} `toml:"breaker"`
}

type Config struct {
	Listen      string
	AllowOrigin string

	IngestURL  string
	WeatherURL string
	MarketURL  string
	NewsURL    string
	AdvisorURL string

	DefaultLat       float64
	DefaultLon       float64
	DefaultCommodity string

	BreakerFailures int
	BreakerOpenFor  time.Duration
	HTTPTimeout     time.Duration
}

func getenv(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}
func getenvInt(k string, d int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
func getenvFloat(k string, d float64) float64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

// loadConfig reads the TOML file when present, then applies env
// overrides and defaults.
func loadConfig(path string) (Config, error) {
	var fc fileConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg := Config{
		Listen:      getenv("GATEWAY_LISTEN", firstNonEmpty(fc.Listen, ":8080")),
		AllowOrigin: getenv("GATEWAY_ALLOW_ORIGIN", fc.AllowOrigin),

		IngestURL:  getenv("INGEST_URL", fc.Upstreams.Ingest),
		WeatherURL: getenv("WEATHER_URL", fc.Upstreams.Weather),
		MarketURL:  getenv("MARKET_URL", fc.Upstreams.Market),
		NewsURL:    getenv("NEWS_URL", fc.Upstreams.News),
		AdvisorURL: getenv("ADVISOR_URL", fc.Upstreams.Advisor),

		DefaultLat:       getenvFloat("DEFAULT_LAT", fc.Defaults.Lat),
		DefaultLon:       getenvFloat("DEFAULT_LON", fc.Defaults.Lon),
		DefaultCommodity: getenv("DEFAULT_COMMODITY", firstNonEmpty(fc.Defaults.Commodity, "Banana")),

		BreakerFailures: getenvInt("CB_FAILURES", orInt(fc.Breaker.Failures, 3)),
		BreakerOpenFor:  time.Duration(getenvInt("CB_OPEN_MS", orInt(fc.Breaker.OpenForMs, 15000))) * time.Millisecond,
		HTTPTimeout:     time.Duration(getenvInt("TIMEOUT_MS", orInt(fc.Breaker.TimeoutMs, 3000))) * time.Millisecond,
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
