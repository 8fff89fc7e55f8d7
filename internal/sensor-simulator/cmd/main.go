package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/agri-ai/portal/internal/model"
	sensorsim "github.com/agri-ai/portal/internal/sensor-simulator"
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
		ClientID: envStr("HOSTNAME", "sensor-simulator"),
	}
	sensorsPath := envStr("SENSORS_CONFIG_PATH", "/app/config/sensors-config.json")
	topicTmpl := envStr("READING_TOPIC_TEMPLATE", "sensor/reading/{field}/{sensor}")
	interval := time.Duration(envInt("PUBLISH_INTERVAL_SEC", 10)) * time.Second

	raw, err := os.ReadFile(sensorsPath)
	if err != nil {
		log.Fatal("read sensors config", zap.Error(err))
	}
	var byField map[string][]model.Sensor // {"field1":[...]}
	if err := json.Unmarshal(raw, &byField); err != nil {
		log.Fatal("unmarshal sensors config", zap.Error(err))
	}
	var sensors []model.Sensor
	for fid, list := range byField {
		for _, s := range list {
			s.FieldID = fid
			sensors = append(sensors, s)
		}
	}
	if len(sensors) == 0 {
		log.Fatal("no sensors configured", zap.String("path", sensorsPath))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqtt.NewConn(ctx, cfg, log)
	if err != nil {
		log.Fatal("mqtt connect error", zap.Error(err))
	}
	defer mqtt.CloseConn(client, log)

	factory := func(topic string) mqtt.IPublisher {
		return mqtt.NewPublisher(client, topic, log)
	}

	sim := sensorsim.NewSimulator(sensors, factory, topicTmpl, interval, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("simulator: shutting down")
		cancel()
	}()

	log.Info("simulator running", zap.Int("sensors", len(sensors)), zap.Duration("interval", interval))
	sim.Run(ctx)
}
