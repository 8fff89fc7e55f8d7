package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/services/gateway/app"
)

func main() {
	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(getenv("GATEWAY_CONFIG_PATH", "/app/config/gateway.toml"))
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	gw := app.NewGateway(app.Config{
		IngestBaseURL:    cfg.IngestURL,
		WeatherBaseURL:   cfg.WeatherURL,
		MarketBaseURL:    cfg.MarketURL,
		NewsBaseURL:      cfg.NewsURL,
		AdvisorBaseURL:   cfg.AdvisorURL,
		DefaultLat:       cfg.DefaultLat,
		DefaultLon:       cfg.DefaultLon,
		DefaultCommodity: cfg.DefaultCommodity,
		HTTPTimeout:      cfg.HTTPTimeout,
		BreakerFailures:  uint32(cfg.BreakerFailures),
		BreakerOpenFor:   cfg.BreakerOpenFor,
		AllowOrigin:      cfg.AllowOrigin,
	}, log)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           gw.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("gateway: shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("gateway listening", zap.String("addr", cfg.Listen))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server error", zap.Error(err))
	}
}
