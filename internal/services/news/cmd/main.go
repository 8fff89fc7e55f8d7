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

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/services/news"
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

	addr := envStr("HTTP_ADDR", ":8084")
	feedsPath := envStr("FEEDS_CONFIG_PATH", "/app/config/feeds.yaml")
	dbPath := envStr("NEWS_DB_PATH", "/app/data/news.db")
	pollEvery := time.Duration(envInt("NEWS_POLL_INTERVAL_MIN", 30)) * time.Minute
	keepDays := envInt("NEWS_RETENTION_DAYS", 90)

	sources, err := news.LoadFeeds(feedsPath)
	if err != nil {
		log.Fatal("load feeds config", zap.Error(err))
	}

	store, err := news.OpenStore(dbPath)
	if err != nil {
		log.Fatal("open article store", zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := news.NewFetcher(sources, store, log)
	go fetcher.Run(ctx, pollEvery, keepDays)

	api := news.NewAPI(store, log)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /news/latest", api.HandleLatest)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("news: shutting down")
		cancel()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("news service listening", zap.String("addr", addr), zap.Int("feeds", len(sources)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server error", zap.Error(err))
	}
}
