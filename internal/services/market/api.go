package market

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/model"
)

// PriceReader is the slice of Store the HTTP layer needs.
type PriceReader interface {
	ModalPriceSeries(ctx context.Context, commodity, market string, days int) ([]float64, error)
	LatestPrices(ctx context.Context, commodity string, lookback time.Duration) ([]model.PricePoint, error)
}

type API struct {
	store PriceReader
	log   *zap.Logger
}

func NewAPI(store PriceReader, log *zap.Logger) *API {
	return &API{store: store, log: log}
}

// HandleLatest serves GET /prices/latest?commodity=&days=
func (a *API) HandleLatest(w http.ResponseWriter, r *http.Request) {
	commodity := r.URL.Query().Get("commodity")
	if commodity == "" {
		http.Error(w, "missing commodity", http.StatusBadRequest)
		return
	}
	lookback := 7 * 24 * time.Hour
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "bad days", http.StatusBadRequest)
			return
		}
		lookback = time.Duration(n) * 24 * time.Hour
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	points, err := a.store.LatestPrices(ctx, commodity, lookback)
	if err != nil {
		a.log.Warn("latest prices query failed", zap.Error(err))
		http.Error(w, "price store unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"commodity": commodity, "prices": points})
}

// HandleForecast serves GET /prices/forecast?commodity=&market=&window=&horizon=
func (a *API) HandleForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	commodity := q.Get("commodity")
	market := q.Get("market")
	if commodity == "" || market == "" {
		http.Error(w, "missing commodity or market", http.StatusBadRequest)
		return
	}
	window := 7
	if raw := q.Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "bad window", http.StatusBadRequest)
			return
		}
		window = n
	}
	horizon := 7
	if raw := q.Get("horizon"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 30 {
			http.Error(w, "bad horizon", http.StatusBadRequest)
			return
		}
		horizon = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	history, err := a.store.ModalPriceSeries(ctx, commodity, market, window*4)
	if err != nil {
		a.log.Warn("price series query failed", zap.Error(err))
		http.Error(w, "price store unavailable", http.StatusBadGateway)
		return
	}
	if len(history) == 0 {
		http.Error(w, "no price history", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"commodity": commodity,
		"market":    market,
		"history":   history,
		"forecast":  ForecastSMA(history, window, horizon),
	})
}
