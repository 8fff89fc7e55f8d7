package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/services/aggregator"
	"github.com/agri-ai/portal/pkg/mqtt"
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

	cfg := &mqtt.Config{
		Host:     envStr("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     envStr("MQTT_USER", "guest"),
		Password: envStr("MQTT_PASSWORD", "guest"),
		ClientID: envStr("HOSTNAME", "aggregator"),
	}
	subTopic := envStr("AGG_SUB_TOPIC", "sensor/reading/#")
	pubTmpl := envStr("AGG_PUB_TOPIC_TEMPLATE", "sensor/aggregated/{field}/{sensor}")
	interval := time.Duration(envInt("AGG_INTERVAL_SEC", 60)) * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqtt.NewConn(ctx, cfg, log)
	if err != nil {
		log.Fatal("mqtt connect error", zap.Error(err))
	}
	defer mqtt.CloseConn(client, log)

	consumer := mqtt.NewConsumer(client, subTopic, nil, log)
	factory := func(topic string) mqtt.IPublisher {
		return mqtt.NewPublisher(client, topic, log)
	}

	svc := aggregator.New(consumer, factory, pubTmpl, interval, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("aggregator: shutting down")
		cancel()
	}()

	log.Info("aggregator running", zap.String("sub", subTopic), zap.Duration("interval", interval))
	svc.Start(ctx)
}
