package main

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/agri-ai/portal/grpc/gen/go/alert"
	"github.com/agri-ai/portal/internal/model"
	"github.com/agri-ai/portal/internal/services/alert"
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

// loadFields reads the same fields-config.json the advisory service
// uses; only the field/sensor IDs matter here.
func loadFields(path string) (map[string]model.Field, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []model.Field
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	fields := make(map[string]model.Field, len(list))
	for _, f := range list {
		for i := range f.Sensors {
			f.Sensors[i].FieldID = f.ID
		}
		fields[f.ID] = f
	}
	return fields, nil
}

func main() {
	log, _ := zap.NewProduction()
	defer func() { _ = log.Sync() }()

	cfg := &mqtt.Config{
		Host:     envStr("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     envStr("MQTT_USER", "guest"),
		Password: envStr("MQTT_PASSWORD", "guest"),
		ClientID: envStr("HOSTNAME", "alert"),
	}
	grpcAddr := envStr("GRPC_ADDR", ":50051")
	fieldsPath := envStr("FIELDS_CONFIG_PATH", "/app/config/fields-config.json")
	alertTmpl := envStr("ALERT_TOPIC_TEMPLATE", "event/alert/{field}/{sensor}")
	resultTmpl := envStr("ALERT_RESULT_TOPIC_TEMPLATE", "event/alertResult/{field}/{sensor}")
	heartbeatTopic := envStr("HEARTBEAT_SUB_TOPIC", "sensor/reading/#")

	fields, err := loadFields(fieldsPath)
	if err != nil {
		log.Fatal("load fields config", zap.Error(err))
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

	handler := alert.NewGrpcHandler(factory, alertTmpl, fields)
	handler.SetResultTopicTemplate(resultTmpl)
	handler.SetLiveness(
		time.Duration(envInt("LIVENESS_TTL_SEC", 60))*time.Second,
		time.Duration(envInt("OFFLINE_GRACE_SEC", 5))*time.Second,
	)

	consumer := mqtt.NewConsumer(client, heartbeatTopic, handler.OnSensorData, log)
	go consumer.ConsumeMessage(ctx)

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatal("grpc listen error", zap.Error(err))
	}
	srv := grpc.NewServer()
	pb.RegisterAlertServiceServer(srv, handler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		log.Info("alert: shutting down")
		cancel()
		srv.GracefulStop()
	}()

	log.Info("alert service listening", zap.String("addr", grpcAddr), zap.Int("fields", len(fields)))
	if err := srv.Serve(lis); err != nil {
		log.Fatal("grpc serve error", zap.Error(err))
	}
}
