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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/services/weather"
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

	apiKey := envStr("OWM_API_KEY", "")
	if apiKey == "" {
		log.Fatal("OWM_API_KEY is required")
	}
	addr := envStr("HTTP_ADDR", ":8082")
	cacheTTL := time.Duration(envInt("FORECAST_CACHE_TTL_MIN", 30)) * time.Minute

	client := weather.NewOWMClient(apiKey)
	if base := envStr("OWM_BASE_URL", ""); base != "" {
		client.SetBaseURL(base)
	}
	api := weather.NewAPI(client, cacheTTL, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /weather/forecast", api.HandleForecast)
	mux.HandleFunc("GET /weather/et0", api.HandleET0)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("weather: shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("weather service listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server error", zap.Error(err))
	}
}
