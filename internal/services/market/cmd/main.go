package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/services/market"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	apiKey := envStr("DATA_GOV_IN_API_KEY", "")
	if apiKey == "" {
		log.Fatal("DATA_GOV_IN_API_KEY is required")
	}
	addr := envStr("HTTP_ADDR", ":8083")
	state := envStr("MARKET_STATE_FILTER", "Kerala")
	commodities := strings.Split(envStr("MARKET_COMMODITIES", ""), ",")
	pollEvery := time.Duration(envInt("MARKET_POLL_INTERVAL_MIN", 360)) * time.Minute

	influxURL := envStr("INFLUXDB_URL", "http://localhost:8086")
	influxToken := envStr("INFLUXDB_TOKEN", "")
	influxOrg := envStr("INFLUXDB_ORG", "agri-ai")
	influxBucket := envStr("INFLUXDB_BUCKET", "market")

	influx := influxdb2.NewClient(influxURL, influxToken)
	defer influx.Close()

	client := market.NewClient(apiKey)
	if u := envStr("DATA_GOV_IN_RESOURCE_URL", ""); u != "" {
		client.SetResourceURL(u)
	}
	store := market.NewStore(influx, influxOrg, influxBucket)
	api := market.NewAPI(store, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poll := func() {
		for _, c := range commodities {
			c = strings.TrimSpace(c)
			pctx, pcancel := context.WithTimeout(ctx, time.Minute)
			points, err := client.FetchPrices(pctx, state, c, 500)
			pcancel()
			if err != nil {
				log.Warn("mandi fetch failed", zap.String("commodity", c), zap.Error(err))
				continue
			}
			wctx, wcancel := context.WithTimeout(ctx, time.Minute)
			err = store.WritePrices(wctx, points)
			wcancel()
			if err != nil {
				log.Warn("price store write failed", zap.Error(err))
				continue
			}
			log.Info("mandi prices stored", zap.String("commodity", c), zap.Int("records", len(points)))
		}
	}

	go func() {
		poll()
		ticker := time.NewTicker(pollEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				poll()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /prices/latest", api.HandleLatest)
	mux.HandleFunc("GET /prices/forecast", api.HandleForecast)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("market: shutting down")
		cancel()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("market service listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server error", zap.Error(err))
	}
}
