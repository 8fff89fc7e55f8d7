package ingest

import (
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.uber.org/zap"
)

// Writer wraps the async WriteAPI and tracks the last write error for
// /healthz and /readyz.
type Writer struct {
	api     api.WriteAPI
	log     *zap.Logger
	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter starts the listener for Influx's async write errors.
func NewWriter(w api.WriteAPI, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	ww := &Writer{
		api:     w,
		log:     log,
		lastErr: time.Now().Add(-24 * time.Hour), // "long ago" by default
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err != nil {
				ww.mu.Lock()
				ww.lastErr = time.Now()
				ww.mu.Unlock()
				ww.log.Error("influx write error", zap.Error(err))
			}
		}
	}()
	return ww
}

// LastErrorAge returns how long the writer has gone without a write error.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// MarkIngest bumps a per-kind counter, handy when debugging the pipeline.
func (w *Writer) MarkIngest(kind string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.counts[kind]++
	w.mu.Unlock()
}

func (w *Writer) Count(kind string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	c := w.counts[kind]
	w.mu.RUnlock()
	return c
}
