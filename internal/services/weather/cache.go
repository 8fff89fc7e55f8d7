package weather

import (
	"fmt"
	"sync"
	"time"
)

// forecastCache keeps one forecast per rounded location for a bounded TTL,
// shielding the OWM quota from dashboard refreshes.
type forecastCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]cacheEntry
}

type cacheEntry struct {
	at   time.Time
	data []DailyForecast
}

func newForecastCache(ttl time.Duration) *forecastCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &forecastCache{ttl: ttl, m: make(map[string]cacheEntry)}
}

// key rounds coordinates to ~1km so nearby sensors share an entry.
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}

func (c *forecastCache) get(lat, lon float64) ([]DailyForecast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[cacheKey(lat, lon)]
	if !ok || time.Since(e.at) > c.ttl {
		return nil, false
	}
	return e.data, true
}

func (c *forecastCache) put(lat, lon float64, data []DailyForecast) {
	c.mu.Lock()
	c.m[cacheKey(lat, lon)] = cacheEntry{at: time.Now(), data: data}
	c.mu.Unlock()
}
