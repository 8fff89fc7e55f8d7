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

	"github.com/agri-ai/portal/internal/services/advisory"
	"github.com/agri-ai/portal/internal/services/weather"
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
func envFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
		ClientID: envStr("HOSTNAME", "advisory"),
	}
	subTopic := envStr("ADVISORY_SUB_TOPIC", "sensor/aggregated/#")
	advisoryTmpl := envStr("ADVISORY_TOPIC_TEMPLATE", "event/advisory/{field}/{sensor}")
	fieldsPath := envStr("FIELDS_CONFIG_PATH", "/app/config/fields-config.json")
	policiesPath := envStr("POLICIES_CONFIG_PATH", "/app/config/crop-policies.json")
	alertMap := envStr("ALERT_GRPC_ADDR_MAP", "")
	owmKey := envStr("OWM_API_KEY", "")
	if alertMap == "" {
		log.Fatal("ALERT_GRPC_ADDR_MAP is required")
	}
	if owmKey == "" {
		log.Fatal("OWM_API_KEY is required")
	}

	fields, err := advisory.LoadFields(fieldsPath)
	if err != nil {
		log.Fatal("load fields config", zap.Error(err))
	}
	policies, err := advisory.LoadPolicies(policiesPath)
	if err != nil {
		log.Fatal("load crop policies", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := mqtt.NewConn(ctx, cfg, log)
	if err != nil {
		log.Fatal("mqtt connect error", zap.Error(err))
	}
	defer mqtt.CloseConn(client, log)

	router, err := advisory.NewAlertRouter(alertMap)
	if err != nil {
		log.Fatal("alert router error", zap.Error(err))
	}
	defer router.Close()

	wclient := weather.NewOWMClient(owmKey)
	if base := envStr("OWM_BASE_URL", ""); base != "" {
		wclient.SetBaseURL(base)
	}

	consumer := mqtt.NewConsumer(client, subTopic, nil, log)
	factory := func(topic string) mqtt.IPublisher {
		return mqtt.NewPublisher(client, topic, log)
	}

	ctrl, err := advisory.NewController(consumer, factory, router, wclient, fields, policies,
		advisory.Options{
			TZName:            envStr("TZ", "Asia/Kolkata"),
			EtoCoeff:          envFloat("BUDGET_ETO_COEFF", 0.5),
			AdvisoryTopicTmpl: advisoryTmpl,
			Cooldown:          time.Duration(envInt("ALERT_COOLDOWN_MIN", 60)) * time.Minute,
		}, log)
	if err != nil {
		log.Fatal("controller init error", zap.Error(err))
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("advisory: shutting down")
		cancel()
	}()

	log.Info("advisory running", zap.String("sub", subTopic), zap.Int("fields", len(fields)))
	ctrl.Start(ctx)
}
