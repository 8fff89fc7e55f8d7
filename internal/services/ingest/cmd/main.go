package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"go.uber.org/zap"

	msg "github.com/agri-ai/portal/internal/model/messages"
	"github.com/agri-ai/portal/internal/services/ingest"
	"github.com/agri-ai/portal/pkg/dedup"
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

	cfg := struct {
		Broker mqtt.Config

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string

		Topics        []string
		BatchSize     int
		FlushInterval time.Duration

		HTTPPort      int
		ShutdownGrace time.Duration
	}{
		Broker: mqtt.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "ingest-service"),
		},

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "agri"),
		InfluxBucket: envStr("INFLUX_BUCKET", "portal"),

		Topics: func() []string {
			raw := envStr("INGEST_SUB_TOPICS", "sensor/reading/#,sensor/aggregated/#,event/advisory/#,event/alert/#,event/alertResult/#")
			parts := strings.Split(raw, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if s := strings.TrimSpace(p); s != "" {
					out = append(out, s)
				}
			}
			return out
		}(),
		BatchSize:     envInt("WRITE_BATCH_SIZE", 10),
		FlushInterval: time.Duration(envInt("WRITE_FLUSH_INTERVAL_MS", 200)) * time.Millisecond,

		HTTPPort:      envInt("HTTP_PORT", 8080),
		ShutdownGrace: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writeAPI := influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket)
	writer := ingest.NewWriter(writeAPI, log)

	// === MQTT ===
	mqttClient, err := mqtt.NewConn(ctx, &cfg.Broker, log)
	if err != nil {
		log.Fatal("mqtt connection error", zap.Error(err))
	}
	defer mqtt.CloseConn(mqttClient, log)

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/healthz", ingest.NewHealthHandler(mqttClient, influx, writer))
	mux.Handle("/readyz", ingest.NewReadyHandler(mqttClient, influx, writer, 2*time.Second))
	mux.Handle("/readings/latest", ingest.NewLatestReadingsHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket))

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("ingest: HTTP listening", zap.Int("port", cfg.HTTPPort))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	// === Consumer ===
	h := ingest.NewMQTTHandler(
		func(r msg.SensorReading) {
			writeAPI.WritePoint(ingest.ReadingToPoint(r))
			writer.MarkIngest("reading")
		},
		func(evt ingest.CommonEvent) {
			writeAPI.WritePoint(ingest.EventToPoint(evt))
			writer.MarkIngest(evt.EventType)
		},
	)

	// shared deduper for the QoS1 topics (redelivery possible)
	d := dedup.New(10*time.Minute, 20000)

	for _, topic := range cfg.Topics {
		if strings.TrimSpace(topic) == "" {
			continue
		}
		log.Info("ingest: subscribing", zap.String("topic", topic))

		qos := byte(0)
		if strings.HasPrefix(topic, "sensor/aggregated") || strings.HasPrefix(topic, "event/") {
			qos = 1
		}

		if token := mqttClient.Subscribe(topic, qos, func(_ pahomqtt.Client, m pahomqtt.Message) {
			if m.Qos() > 0 {
				hh := sha256.Sum256(m.Payload())
				if !d.ShouldProcess(hex.EncodeToString(hh[:])) {
					return
				}
			}
			_ = h.Handle("", m)
		}); token.Wait() && token.Error() != nil {
			log.Fatal("subscribe error", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}

	// === Wait for signal ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("ingest: shutting down")

	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	// allow the async writer to flush
	time.Sleep(cfg.FlushInterval + 100*time.Millisecond)
}
